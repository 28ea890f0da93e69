// Package mcp exposes the display-name transform as MCP tools over stdio.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/displayname/pkg/mcplog"
	"github.com/gnana997/displayname/pkg/transformer"
)

// Server implements the MCP server.
type Server struct {
	mcpServer *server.MCPServer
	engine    *transformer.Engine
	callLog   *mcplog.Logger // nil disables the call log
	logger    *slog.Logger
	handlers  map[string]server.ToolHandlerFunc
}

// NewServer creates an MCP server backed by engine. callLog may be nil.
func NewServer(engine *transformer.Engine, callLog *mcplog.Logger, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{engine: engine, callLog: callLog, logger: logger}

	mw := s.loggingMiddleware()
	s.mcpServer = server.NewMCPServer(
		"displayname",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(mw),
	)

	tools := []server.ServerTool{
		{Tool: addDisplayNamesTool(), Handler: s.handleAddDisplayNames},
		{Tool: findComponentsTool(), Handler: s.handleFindComponents},
	}
	s.mcpServer.AddTools(tools...)

	s.handlers = make(map[string]server.ToolHandlerFunc, len(tools))
	for _, t := range tools {
		s.handlers[t.Tool.Name] = chain(t.Handler, mw)
	}
	return s
}

// ServeStdio serves MCP on stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server, e.g. for an HTTP transport.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}
