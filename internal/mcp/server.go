package mcp

import (
	"context"
	"io"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is announced to clients during initialization.
const ServerName = "k8s-cluster-mcp"

// NewServer registers every tool on a new MCP server.
func NewServer(tools *Tools, version string) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, spec := range toolSpecs {
		s.AddTool(newTool(spec), tools.handler(spec))
	}
	return s
}

func newTool(spec toolSpec) mcpgo.Tool {
	opts := []mcpgo.ToolOption{mcpgo.WithDescription(spec.description)}
	for _, p := range spec.params {
		propOpts := []mcpgo.PropertyOption{mcpgo.Description(p.description)}
		if p.def != "" {
			propOpts = append(propOpts, mcpgo.DefaultString(p.def))
		}
		opts = append(opts, mcpgo.WithString(p.name, propOpts...))
	}
	return mcpgo.NewTool(spec.name, opts...)
}

func (t *Tools) handler(spec toolSpec) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		args := make(map[string]string, len(spec.params))
		for _, p := range spec.params {
			args[p.name] = req.GetString(p.name, p.def)
		}
		return mcpgo.NewToolResultText(t.Call(ctx, spec.name, args)), nil
	}
}

// ServeStdio runs the protocol on in/out until ctx is cancelled or in closes.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}
