// -----------------------------------------------------------------------
// Tool router - maps tool names to handlers and serializes results
// -----------------------------------------------------------------------

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atlassian-mcp/internal/models"
)

// ToolFunc executes one tool call against the raw argument map and returns a
// JSON-serializable result.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// Router dispatches tool calls by name. Results are rendered as indented
// JSON; failures are wrapped uniformly so callers see a single error shape
// while the log carries the underlying cause.
type Router struct {
	handlers map[string]ToolFunc
	tools    []mcp.Tool
	logger   arbor.ILogger
}

// NewRouter creates an empty tool router
func NewRouter(logger arbor.ILogger) *Router {
	return &Router{
		handlers: make(map[string]ToolFunc),
		logger:   logger,
	}
}

// Register adds a tool definition and its handler to the registry
func (r *Router) Register(tool mcp.Tool, handler ToolFunc) {
	r.handlers[tool.Name] = handler
	r.tools = append(r.tools, tool)
}

// Dispatch runs the named tool and returns its result as indented JSON.
// An unregistered name fails with UnknownToolError before any work happens.
func (r *Router) Dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return "", &models.UnknownToolError{Name: name}
	}

	requestID := uuid.NewString()
	r.logger.Debug().Str("request_id", requestID).Str("tool", name).Msg("Dispatching tool call")

	result, err := handler(ctx, args)
	if err != nil {
		r.logger.Error().Str("request_id", requestID).Str("tool", name).Err(err).Msg("Tool execution error")
		return "", fmt.Errorf("tool execution failed: %w", err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		r.logger.Error().Str("request_id", requestID).Str("tool", name).Err(err).Msg("Result serialization error")
		return "", fmt.Errorf("tool execution failed: %w", err)
	}

	return string(payload), nil
}

// Attach registers every routed tool with the MCP server. Dispatch failures
// surface as tool-result errors, not protocol errors.
func (r *Router) Attach(s *mcpserver.MCPServer) {
	for _, tool := range r.tools {
		tool := tool
		s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			text, err := r.Dispatch(ctx, tool.Name, request.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(text), nil
		})
	}
}
