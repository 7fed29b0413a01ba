package checkout

import (
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/meta"
)

type Command struct {
	force bool
}

func (c *Command) Name() string      { return "checkout" }
func (c *Command) Short() string     { return "co" }
func (c *Command) Aliases() []string { return []string{"switch"} }
func (c *Command) Usage() string     { return "checkout <branch|commit> [--force]" }
func (c *Command) Brief() string     { return "Switch to a branch or commit and restore its documents" }
func (c *Command) Help() string {
	return `Move HEAD and make the tracked directory an exact copy of the target
snapshot. A branch name attaches HEAD; any other ref detaches it, unless the
commit is the head of a branch.

The loaded set of the context index is reset to the domains the target
commit touched. Pins and exclusions are kept.

Options:
  -f, --force    Discard uncommitted changes to tracked documents.

Examples:
  kvc checkout main
  kvc checkout HEAD~2`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.force, "force", "f", false, "discard uncommitted changes")
}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) != 1 {
		return command.Usagef("%s", c.Usage())
	}
	res, err := ctx.Repo.Checkout(ctx, ctx.Args[0], c.force)
	if err != nil {
		return err
	}

	_, detached := res.Head.(meta.Detached)
	out := struct {
		Head     string `json:"head" yaml:"head"`
		Detached bool   `json:"detached" yaml:"detached"`
		Commit   string `json:"commit" yaml:"commit"`
		Written  int    `json:"written" yaml:"written"`
		Removed  int    `json:"removed" yaml:"removed"`
	}{res.Head.String(), detached, res.Commit.Hash, res.Restored.Written, res.Restored.Removed}

	return ctx.Emit(out, func() error {
		if detached {
			ctx.Printf("HEAD is now %s %s\n", color.YellowString(res.Head.String()), res.Commit.Message)
		} else {
			ctx.Printf("Switched to branch %s\n", color.GreenString(out.Head))
		}
		ctx.Printf("%d documents written, %d removed\n", out.Written, out.Removed)
		return nil
	})
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
