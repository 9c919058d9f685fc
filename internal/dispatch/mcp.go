package dispatch

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCP exposes the dispatcher's tool table on an MCP server.
// Every argument is a string property; the dispatcher owns validation,
// so the transport handler only collects values and forwards them.
func RegisterMCP(s *server.MCPServer, d *Dispatcher) {
	for _, t := range d.Tools() {
		opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}
		for _, a := range t.Args {
			propOpts := []mcp.PropertyOption{mcp.Description(a.Description)}
			if a.Required {
				propOpts = append(propOpts, mcp.Required())
			}
			opts = append(opts, mcp.WithString(a.Name, propOpts...))
		}

		name := t.Name
		args := t.Args
		s.AddTool(mcp.NewTool(name, opts...), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			req := Request{}
			for _, a := range args {
				req[a.Name] = request.GetString(a.Name, "")
			}
			return mcp.NewToolResultText(d.Dispatch(ctx, name, req)), nil
		})
	}
}
