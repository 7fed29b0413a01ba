package watch

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/watch"
)

type Command struct {
	debounce time.Duration
	commit   bool
	model    string
}

func (c *Command) Name() string      { return "watch" }
func (c *Command) Short() string     { return "w" }
func (c *Command) Aliases() []string { return nil }
func (c *Command) Usage() string     { return "watch [--debounce 2s] [--commit] [--model name]" }
func (c *Command) Brief() string     { return "Watch tracked documents and auto-commit edits" }
func (c *Command) Help() string {
	return `Watch the tracked directory. After a quiet period following a burst of
edits, the changes are committed with an agent author when auto_commit is
enabled in config.toml or --commit is given, and reported otherwise.

Stops on interrupt; pending edits are handled before exiting.

Options:
      --debounce <d>    Quiet period before a batch is handled (default 2s).
      --commit          Commit batches even when auto_commit is off.
      --model <name>    Agent model recorded as author (default from config).`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.DurationVar(&c.debounce, "debounce", watch.DefaultDebounce, "quiet period before handling a batch")
	fs.BoolVar(&c.commit, "commit", false, "commit every batch")
	fs.StringVar(&c.model, "model", "", "agent model of auto commits")
}

func (c *Command) Run(ctx *command.Context) error {
	r := ctx.Repo
	s := r.Settings()
	model := c.model
	if model == "" {
		model = s.Agent.Model()
	}

	w, err := watch.New(r.Tree, c.debounce, ctx.Log.Named("watch"))
	if err != nil {
		return err
	}
	defer w.Close()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ac := &watch.AutoCommit{
		Repo:   r,
		Author: meta.Agent{Model: model},
		Commit: c.commit || s.Context.AutoCommit,
		Log:    ctx.Log,
		Report: func(res watch.Result) {
			if res.Commit != nil {
				ctx.Printf("%s %s %s\n", time.Now().Format("15:04:05"), color.YellowString(res.Commit.Short()), res.Commit.Message)
				return
			}
			ctx.Printf("%s %d uncommitted changes\n", time.Now().Format("15:04:05"), res.Changes.Len())
			for _, ch := range res.Changes.Changes {
				ctx.Printf("  %s %s\n", ch.Kind.Symbol(), ch.Path)
			}
		},
	}

	mode := "reporting"
	if ac.Commit {
		mode = "auto-committing"
	}
	ctx.Printf("Watching %s (%s, debounce %s); Ctrl-C to stop\n", r.Tree.Abs(r.Tree.Tracked), mode, c.debounce)
	ctx.Log.Debug("watch started", zap.Bool("commit", ac.Commit), zap.Duration("debounce", c.debounce))
	return w.Run(sigCtx, ac.Handle)
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
