package load

import (
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/index"
)

type Command struct {
	pin  bool
	list bool
}

func (c *Command) Name() string      { return "load" }
func (c *Command) Short() string     { return "l" }
func (c *Command) Aliases() []string { return []string{"add"} }
func (c *Command) Usage() string     { return "load <path|glob|[[link]]>... [--pin] | load --list" }
func (c *Command) Brief() string     { return "Add documents or directories to the active context" }
func (c *Command) Help() string {
	return `Add paths to the loaded set of the context index. A path may be a
document, a directory (everything below it), a glob such as
"domains/**/*.md" or a [[wikilink]].

Excluded paths are refused with a warning; run "kvc include" first.

Options:
      --pin     Also pin the paths so they survive checkouts.
      --list    Print the active set instead of loading anything.

Examples:
  kvc load domains/auth
  kvc load --pin [[patterns]]
  kvc load --list`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.pin, "pin", "p", false, "pin the paths as well")
	fs.BoolVarP(&c.list, "list", "l", false, "list the active set")
}

func (c *Command) Run(ctx *command.Context) error {
	if c.list {
		if len(ctx.Args) > 0 || c.pin {
			return command.Usagef("%s", c.Usage())
		}
		return ctx.ActiveReport()
	}
	if len(ctx.Args) == 0 {
		return command.Usagef("%s", c.Usage())
	}
	paths, err := ctx.VaultPaths(ctx.Args)
	if err != nil {
		return err
	}

	var warnings []string
	err = ctx.Repo.UpdateIndex(ctx, func(ix *index.Index) error {
		warnings = ix.Load(paths)
		if c.pin {
			var keep []string
			for _, p := range paths {
				if !ix.IsExcluded(p) {
					keep = append(keep, p)
				}
			}
			ix.Pin(keep)
		}
		return nil
	})
	if err != nil {
		return err
	}
	verb := "loaded"
	if c.pin {
		verb = "loaded and pinned"
	}
	return ctx.IndexReport(verb, paths, warnings)
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
