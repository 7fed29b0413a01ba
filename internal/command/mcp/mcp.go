package mcp

import (
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/mcpserver"
	"github.com/keshon/kvc/internal/middleware"
)

type Command struct{}

func (c *Command) Name() string      { return "mcp" }
func (c *Command) Short() string     { return "" }
func (c *Command) Aliases() []string { return []string{"serve"} }
func (c *Command) Usage() string     { return "mcp" }
func (c *Command) Brief() string     { return "Serve the vault to an agent over MCP (stdio)" }
func (c *Command) Help() string {
	return `Run a Model Context Protocol server on stdin/stdout so an agent can read
status, history and the active context, load documents and commit.

Tools: vault_status, vault_log, vault_diff, vault_commit, context_load,
context_active.

Logs go to stderr; stdout carries only protocol messages.`
}

func (c *Command) Flags(fs *pflag.FlagSet) {}

func (c *Command) Run(ctx *command.Context) error {
	ctx.Log.Debug("mcp server starting", zap.String("vault", ctx.Repo.Tree.Root), zap.String("version", command.Version))
	return mcpserver.Serve(ctx.Repo, command.Version)
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithVault(),
			middleware.WithDebugArgsPrint(),
		),
	)
}
