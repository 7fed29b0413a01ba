package merge

import (
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	repomerge "github.com/keshon/kvc/internal/repo/merge"
	"github.com/keshon/kvc/internal/repo/meta"
)

type Command struct {
	into   string
	squash bool
}

func (c *Command) Name() string      { return "merge" }
func (c *Command) Short() string     { return "m" }
func (c *Command) Aliases() []string { return nil }
func (c *Command) Usage() string     { return "merge <source> [--into <target>] [--squash]" }
func (c *Command) Brief() string     { return "Merge a branch into the current branch" }
func (c *Command) Help() string {
	return `Merge the documents of <source> into <target> (the current branch by
default) and record a merge commit with both heads as parents.

Per document, relative to the merge base:
  changed only in source        source version is adopted
  deleted in source only        document is removed
  changed on both sides         target version, a separator, source version

The separator reads:

  ---
  <!-- merged from <source> (<short hash>) -->

Nothing happens when source is already part of target's history.

Options:
      --into <branch>    Merge into another branch without checking it out.
      --squash           List the source commits in the merge message.`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.StringVar(&c.into, "into", "", "target branch")
	fs.BoolVar(&c.squash, "squash", false, "fold the source commits into the merge message")
}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) != 1 {
		return command.Usagef("%s", c.Usage())
	}
	var opts []repomerge.Option
	if c.squash {
		opts = append(opts, repomerge.Squash())
	}
	res, err := ctx.Repo.Merge(ctx, ctx.Args[0], c.into, opts...)
	if err != nil {
		return err
	}

	return ctx.Emit(res, func() error {
		if res.NoOp {
			ctx.Println("Already up to date")
			return nil
		}
		ctx.Printf("Merge commit %s (base %s)\n", color.YellowString(res.Commit.Short()), color.YellowString(meta.ShortHash(res.Base)))
		if n := len(res.Squashed); n > 0 {
			ctx.Printf("Squashed %d commits\n", n)
		}
		for _, p := range res.Adopted {
			ctx.Printf("  %s %s\n", color.GreenString("adopted     "), p)
		}
		for _, p := range res.Concatenated {
			ctx.Printf("  %s %s\n", color.YellowString("concatenated"), p)
		}
		for _, p := range res.Removed {
			ctx.Printf("  %s %s\n", color.RedString("removed     "), p)
		}
		if n := len(res.Concatenated); n > 0 {
			ctx.Printf("%d documents were edited on both sides; review the merged sections\n", n)
		}
		return nil
	})
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithHeadCheck(),
			middleware.WithVault(),
			middleware.WithDebugArgsPrint(),
		),
	)
}
