package rewind

import (
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo"
)

type Command struct {
	soft bool
	hard bool
}

func (c *Command) Name() string      { return "rewind" }
func (c *Command) Short() string     { return "" }
func (c *Command) Aliases() []string { return []string{"reset"} }
func (c *Command) Usage() string     { return "rewind <ref> [--soft|--hard]" }
func (c *Command) Brief() string     { return "Point the current branch (or detached HEAD) at an earlier commit" }
func (c *Command) Help() string {
	return `Move the current branch ref to <ref>. Nothing is deleted: commits made
after <ref> stay in the commit log and can be checked out by hash.

Options:
      --soft    Move only the ref; documents are left as they are (default).
      --hard    Also restore the documents of <ref>.

Examples:
  kvc rewind HEAD~1
  kvc rewind 3f2a --hard`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.soft, "soft", false, "move the ref only")
	fs.BoolVar(&c.hard, "hard", false, "also restore documents")
}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) != 1 {
		return command.Usagef("%s", c.Usage())
	}
	if c.soft && c.hard {
		return command.Usagef("--soft and --hard are mutually exclusive")
	}
	mode := repo.Soft
	if c.hard {
		mode = repo.Hard
	}

	prev, err := ctx.Repo.Meta.HeadTarget()
	if err != nil {
		return err
	}
	cmt, err := ctx.Repo.Rewind(ctx, ctx.Args[0], mode)
	if err != nil {
		return err
	}

	out := struct {
		Head     string `json:"head" yaml:"head"`
		Commit   string `json:"commit" yaml:"commit"`
		Previous string `json:"previous" yaml:"previous"`
		Mode     string `json:"mode" yaml:"mode"`
	}{ctx.Repo.Meta.DescribeHead(), cmt.Hash, prev, mode.String()}

	return ctx.Emit(out, func() error {
		ctx.Printf("%s is now at %s %s (%s)\n", out.Head, color.YellowString(cmt.Short()), cmt.Message, mode)
		if prev != "" && prev != cmt.Hash {
			ctx.Printf("previous head %s is still reachable by hash\n", color.YellowString(prev))
		}
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
