package pin

import (
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/index"
)

type Command struct {
	exclude bool
}

func (c *Command) Name() string      { return "pin" }
func (c *Command) Short() string     { return "p" }
func (c *Command) Aliases() []string { return nil }
func (c *Command) Usage() string     { return "pin <path|glob|[[link]]>... [--exclude]" }
func (c *Command) Brief() string     { return "Keep documents in the active context across checkouts" }
func (c *Command) Help() string {
	return `Pin paths so they stay active regardless of what is loaded. Checkout
resets the loaded set but never touches pins. An excluded path can be
pinned, but it stays out of the active set until it is included again.

Options:
      --exclude    Exclude the paths instead, like "kvc exclude".

Examples:
  kvc pin domains/_global
  kvc pin [[conventions]]
  kvc pin --exclude domains/archive`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.exclude, "exclude", "x", false, "exclude the paths instead of pinning them")
}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) == 0 {
		return command.Usagef("%s", c.Usage())
	}
	paths, err := ctx.VaultPaths(ctx.Args)
	if err != nil {
		return err
	}
	var warnings []string
	err = ctx.Repo.UpdateIndex(ctx, func(ix *index.Index) error {
		if c.exclude {
			ix.Exclude(paths)
			return nil
		}
		warnings = ix.Pin(paths)
		return nil
	})
	if err != nil {
		return err
	}
	if c.exclude {
		return ctx.IndexReport("excluded", paths, nil)
	}
	return ctx.IndexReport("pinned", paths, warnings)
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
