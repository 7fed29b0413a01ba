package exclude

import (
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/index"
)

type Command struct{}

func (c *Command) Name() string      { return "exclude" }
func (c *Command) Short() string     { return "x" }
func (c *Command) Aliases() []string { return []string{"ignore"} }
func (c *Command) Usage() string     { return "exclude <path|glob>..." }
func (c *Command) Brief() string     { return "Keep paths out of the active context" }
func (c *Command) Help() string {
	return `Add exclude patterns to the context index. Exclusion wins over loading and
pinning: an excluded document is never part of the active set.

Examples:
  kvc exclude "domains/**/drafts/*"
  kvc exclude domains/archive`
}

func (c *Command) Flags(fs *pflag.FlagSet) {}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) == 0 {
		return command.Usagef("%s", c.Usage())
	}
	paths, err := ctx.VaultPaths(ctx.Args)
	if err != nil {
		return err
	}
	err = ctx.Repo.UpdateIndex(ctx, func(ix *index.Index) error {
		ix.Exclude(paths)
		return nil
	})
	if err != nil {
		return err
	}
	return ctx.IndexReport("excluded", paths, nil)
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
