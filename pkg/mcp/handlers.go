package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/displayname/pkg/transformer"
)

// componentsResponse is the find_components result.
type componentsResponse struct {
	FileName   string                  `json:"filename"`
	Components []transformer.Component `json:"components"`
}

// HandleToolCall dispatches a call by tool name, going through the same
// middleware as calls arriving over stdio.
func (s *Server) HandleToolCall(ctx context.Context, toolName string, args map[string]any) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers[toolName]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", toolName)
	}
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: toolName, Arguments: args}}
	return handler(ctx, req)
}

func (s *Server) handleAddDisplayNames(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fileName := req.GetString("filename", defaultFileName)

	src := []byte(code)
	res, err := s.engine.Transform(ctx, fileName, src)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(transformer.NewResponse(src, res))
}

func (s *Server) handleFindComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fileName := req.GetString("filename", defaultFileName)

	src := []byte(code)
	cands, err := s.engine.Candidates(ctx, fileName, src)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(componentsResponse{
		FileName:   fileName,
		Components: transformer.DescribeCandidates(src, cands),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// chain wraps h in the server's middleware, outermost first.
func chain(h server.ToolHandlerFunc, mws ...server.ToolHandlerMiddleware) server.ToolHandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
