package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/displayname/pkg/mcplog"
)

// loggingMiddleware records every tool call as a JSONL entry in the call log
// and as a debug line in the process log.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			entry := mcplog.NewEntry(req.Params.Name, req.GetArguments(), start)

			result, err := next(ctx, req)

			entry.Finish(result, err, time.Since(start))
			_ = s.callLog.Write(entry)
			s.logger.Debug("tool call",
				"id", entry.ID,
				"tool", entry.Tool,
				"duration_ms", entry.DurationMs,
				"is_error", entry.IsError)

			return result, err
		}
	}
}
