package exclude

import (
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/index"
)

type IncludeCommand struct{}

func (c *IncludeCommand) Name() string      { return "include" }
func (c *IncludeCommand) Short() string     { return "" }
func (c *IncludeCommand) Aliases() []string { return nil }
func (c *IncludeCommand) Usage() string     { return "include <path|glob>..." }
func (c *IncludeCommand) Brief() string     { return "Remove exclude patterns" }
func (c *IncludeCommand) Help() string {
	return `Remove exclude patterns previously added with "kvc exclude". Patterns
from the never_load setting in config.toml cannot be removed this way.`
}

func (c *IncludeCommand) Flags(fs *pflag.FlagSet) {}

func (c *IncludeCommand) Run(ctx *command.Context) error {
	if len(ctx.Args) == 0 {
		return command.Usagef("%s", c.Usage())
	}
	paths, err := ctx.VaultPaths(ctx.Args)
	if err != nil {
		return err
	}
	err = ctx.Repo.UpdateIndex(ctx, func(ix *index.Index) error {
		ix.Include(paths)
		return nil
	})
	if err != nil {
		return err
	}
	return ctx.IndexReport("included", paths, nil)
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&IncludeCommand{},
			middleware.WithVault(),
			middleware.WithDebugArgsPrint(),
		),
	)
}
