// Package mcpserver exposes a vault to agents as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/keshon/kvc/internal/repo"
)

// Tool is one MCP tool backed by the vault.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Tools returns every tool bound to r.
func Tools(r *repo.Repository) []Tool {
	return []Tool{
		&StatusTool{repo: r},
		&LogTool{repo: r},
		&DiffTool{repo: r},
		&CommitTool{repo: r},
		&LoadTool{repo: r},
		&ActiveTool{repo: r},
	}
}

// New creates the MCP server with all vault tools registered.
func New(r *repo.Repository, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"kvc",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	for _, t := range Tools(r) {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func Serve(r *repo.Repository, version string) error {
	return server.ServeStdio(New(r, version))
}

const instructions = `kvc versions a vault of knowledge documents.
Call vault_status at the start of a session and context_active to read the
documents currently in context. Use context_load to bring more documents in
and vault_commit to checkpoint edits with a short message.`
