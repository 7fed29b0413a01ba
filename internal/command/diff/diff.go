package diff

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	vdiff "github.com/keshon/kvc/internal/repo/diff"
)

type Command struct {
	patch bool
	stat  bool
}

func (c *Command) Name() string      { return "diff" }
func (c *Command) Short() string     { return "d" }
func (c *Command) Aliases() []string { return nil }
func (c *Command) Usage() string     { return "diff [<a> [<b>]] [--patch] [--stat]" }
func (c *Command) Brief() string     { return "Show changes between commits or against the working tree" }
func (c *Command) Help() string {
	return `Compare snapshots.

  kvc diff              working tree against HEAD
  kvc diff <a>          working tree against <a>
  kvc diff <a> <b>      commit <a> against commit <b>

Refs may be branch names, hashes, unique hash prefixes or HEAD~N.

Options:
      --patch    Print unified diffs of every changed document.
      --stat     Print sizes and token deltas per document.`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.patch, "patch", "p", false, "show unified diffs")
	fs.BoolVar(&c.stat, "stat", false, "show per document statistics")
}

func (c *Command) Run(ctx *command.Context) error {
	r := ctx.Repo
	var (
		cs      vdiff.ChangeSet
		err     error
		working bool
	)
	switch len(ctx.Args) {
	case 0:
		cs, err = r.DiffWorking("")
		working = true
	case 1:
		cs, err = r.DiffWorking(ctx.Args[0])
		working = true
	case 2:
		cs, err = r.DiffRefs(ctx.Args[0], ctx.Args[1])
	default:
		return command.Usagef("%s", c.Usage())
	}
	if err != nil {
		return err
	}

	if ctx.Structured() {
		out := struct {
			Changes    []vdiff.Change `json:"changes" yaml:"changes"`
			TokenDelta int            `json:"token_delta" yaml:"token_delta"`
		}{cs.Changes, cs.TokenDelta()}
		return ctx.Emit(out, nil)
	}

	if cs.Empty() {
		ctx.Println("No changes")
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, ch := range cs.Changes {
		if c.stat {
			ctx.Printf("%s %-50s %8s -> %-8s %+d tokens\n", ch.Kind.Symbol(), ch.Path,
				humanize.IBytes(uint64(ch.OldSize)), humanize.IBytes(uint64(ch.NewSize)), ch.TokenDelta)
		} else {
			ctx.Printf("%s %s\n", ch.Kind.Symbol(), ch.Path)
		}
		if !c.patch {
			continue
		}
		p, err := r.Patch(ch, working)
		if err != nil {
			return err
		}
		for _, line := range strings.SplitAfter(p, "\n") {
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
				ctx.Printf("%s", line)
			case strings.HasPrefix(line, "+"):
				ctx.Printf("%s", green(line))
			case strings.HasPrefix(line, "-"):
				ctx.Printf("%s", red(line))
			case strings.HasPrefix(line, "@@"):
				ctx.Printf("%s", cyan(line))
			default:
				ctx.Printf("%s", line)
			}
		}
	}

	ctx.Printf("\n%d added, %d modified, %d removed, %+d tokens\n",
		len(cs.Of(vdiff.Added)), len(cs.Of(vdiff.Modified)), len(cs.Of(vdiff.Removed)), cs.TokenDelta())
	return nil
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
