package load

import (
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/index"
)

type UnloadCommand struct {
	all bool
}

func (c *UnloadCommand) Name() string      { return "unload" }
func (c *UnloadCommand) Short() string     { return "" }
func (c *UnloadCommand) Aliases() []string { return []string{"drop"} }
func (c *UnloadCommand) Usage() string     { return "unload <path>... | --all" }
func (c *UnloadCommand) Brief() string     { return "Remove paths from the active context" }
func (c *UnloadCommand) Help() string {
	return `Remove entries from the loaded set. Pinned paths stay active; use
"kvc unpin" for those.

Options:
      --all    Clear the whole loaded set.`
}

func (c *UnloadCommand) Flags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "clear the loaded set")
}

func (c *UnloadCommand) Run(ctx *command.Context) error {
	if !c.all && len(ctx.Args) == 0 {
		return command.Usagef("%s", c.Usage())
	}
	paths, err := ctx.VaultPaths(ctx.Args)
	if err != nil {
		return err
	}
	err = ctx.Repo.UpdateIndex(ctx, func(ix *index.Index) error {
		if c.all {
			paths = ix.Loaded
			ix.UnloadAll()
			return nil
		}
		ix.Unload(paths)
		return nil
	})
	if err != nil {
		return err
	}
	return ctx.IndexReport("unloaded", paths, nil)
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&UnloadCommand{},
			middleware.WithVault(),
			middleware.WithDebugArgsPrint(),
		),
	)
}
