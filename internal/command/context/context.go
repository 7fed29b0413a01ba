package context

import (
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/index"
)

type Command struct {
	compress bool
	json     bool
	list     bool
}

func (c *Command) Name() string      { return "context" }
func (c *Command) Short() string     { return "ctx" }
func (c *Command) Aliases() []string { return nil }
func (c *Command) Usage() string     { return "context [--compress] [--list] [--json]" }
func (c *Command) Brief() string     { return "Print the active context" }
func (c *Command) Help() string {
	return `Concatenate every document of the active set (loaded and pinned paths
minus exclusions) into one stream, each preceded by a "# File: <path>"
header. This is what an agent should read.

Options:
      --compress    Trim trailing whitespace and collapse blank lines.
      --list        Only list the active documents with their token estimates.
      --json        Shorthand for --format json.`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.compress, "compress", false, "compress whitespace")
	fs.BoolVar(&c.list, "list", false, "list the active documents only")
	fs.BoolVar(&c.json, "json", false, "json output")
}

func (c *Command) Run(ctx *command.Context) error {
	if c.json {
		ctx.Options.Format = "json"
	}
	if c.list {
		return ctx.ActiveReport()
	}
	act, err := ctx.Repo.ActiveSet()
	if err != nil {
		return err
	}
	if ctx.Structured() {
		return ctx.Emit(act, nil)
	}
	return index.Render(ctx.Out, act, ctx.Repo.Tree.Read, c.compress)
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
