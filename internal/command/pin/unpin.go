package pin

import (
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/index"
)

type UnpinCommand struct{}

func (c *UnpinCommand) Name() string      { return "unpin" }
func (c *UnpinCommand) Short() string     { return "" }
func (c *UnpinCommand) Aliases() []string { return nil }
func (c *UnpinCommand) Usage() string     { return "unpin <path>..." }
func (c *UnpinCommand) Brief() string     { return "Remove pins" }
func (c *UnpinCommand) Help() string {
	return `Remove paths from the pinned set. An exclude entry for exactly the same
path is removed as well.`
}

func (c *UnpinCommand) Flags(fs *pflag.FlagSet) {}

func (c *UnpinCommand) Run(ctx *command.Context) error {
	if len(ctx.Args) == 0 {
		return command.Usagef("%s", c.Usage())
	}
	paths, err := ctx.VaultPaths(ctx.Args)
	if err != nil {
		return err
	}
	err = ctx.Repo.UpdateIndex(ctx, func(ix *index.Index) error {
		ix.Unpin(paths)
		return nil
	})
	if err != nil {
		return err
	}
	return ctx.IndexReport("unpinned", paths, nil)
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&UnpinCommand{},
			middleware.WithVault(),
			middleware.WithDebugArgsPrint(),
		),
	)
}
