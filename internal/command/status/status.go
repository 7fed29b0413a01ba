package status

import (
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/diff"
	"github.com/keshon/kvc/internal/repo/meta"
)

type Command struct {
	short bool
}

func (c *Command) Name() string      { return "status" }
func (c *Command) Short() string     { return "s" }
func (c *Command) Aliases() []string { return []string{"st"} }
func (c *Command) Usage() string     { return "status [--short]" }
func (c *Command) Brief() string     { return "Show HEAD, uncommitted changes and the active context" }
func (c *Command) Help() string {
	return `Show the current branch (or detached commit), tracked documents that
differ from HEAD, and the size of the active context against the token
budget.

Options:
      --short    One line per change, no context summary.`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.short, "short", false, "short format")
}

type report struct {
	Head        string        `json:"head" yaml:"head"`
	Detached    bool          `json:"detached" yaml:"detached"`
	Commit      string        `json:"commit,omitempty" yaml:"commit,omitempty"`
	Changes     []diff.Change `json:"changes" yaml:"changes"`
	Tokens      int           `json:"active_tokens" yaml:"active_tokens"`
	MaxTokens   int           `json:"max_tokens" yaml:"max_tokens"`
	ActiveFiles int           `json:"active_files" yaml:"active_files"`
	OverBudget  bool          `json:"over_budget" yaml:"over_budget"`
}

func (c *Command) Run(ctx *command.Context) error {
	st, err := ctx.Repo.Status()
	if err != nil {
		return err
	}

	rep := report{
		Head:        st.Head.String(),
		Changes:     st.Changes.Changes,
		Tokens:      st.Active.TotalTokens,
		MaxTokens:   st.Active.MaxTokens,
		ActiveFiles: len(st.Active.Entries),
		OverBudget:  st.Active.OverBudget,
	}
	if rep.Changes == nil {
		rep.Changes = []diff.Change{}
	}
	_, rep.Detached = st.Head.(meta.Detached)
	if st.Commit != nil {
		rep.Commit = st.Commit.Hash
	}

	return ctx.Emit(rep, func() error {
		if c.short {
			for _, ch := range st.Changes.Changes {
				ctx.Printf("%s %s\n", ch.Kind.Symbol(), ch.Path)
			}
			return nil
		}

		bold := color.New(color.Bold).SprintFunc()
		if rep.Detached {
			ctx.Printf("HEAD %s\n", color.YellowString(st.Head.String()))
		} else {
			ctx.Printf("On branch %s\n", bold(st.Head.String()))
		}
		if st.Commit != nil {
			ctx.Printf("Commit %s %s\n", color.YellowString(st.Commit.Short()), st.Commit.Message)
		}
		ctx.Println()

		if !st.Dirty() {
			ctx.Println("Nothing to commit, tracked documents match HEAD")
		} else {
			ctx.Println("Uncommitted changes:")
			for _, ch := range st.Changes.Changes {
				ctx.Printf("  %s %s\n", paint(ch.Kind)(ch.Kind.String()+":"), ch.Path)
			}
		}
		ctx.Println()

		budget := "within budget"
		if rep.OverBudget {
			budget = color.RedString("over budget")
		}
		ctx.Printf("Active context: %d files, ~%s / %s tokens (%s)\n",
			rep.ActiveFiles, humanize.Comma(int64(rep.Tokens)), humanize.Comma(int64(rep.MaxTokens)), budget)
		for _, m := range st.Active.Missing {
			ctx.Printf("  %s %s matches no document\n", color.YellowString("warning:"), m)
		}
		return nil
	})
}

func paint(k diff.Kind) func(a ...interface{}) string {
	switch k {
	case diff.Added:
		return color.New(color.FgGreen).SprintFunc()
	case diff.Removed:
		return color.New(color.FgRed).SprintFunc()
	default:
		return color.New(color.FgYellow).SprintFunc()
	}
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
