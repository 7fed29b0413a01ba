package commit

import (
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo"
	"github.com/keshon/kvc/internal/repo/meta"
)

type Command struct {
	messages   []string
	agent      bool
	model      string
	session    string
	newSession bool
	author     string
	allowEmpty bool
}

func (c *Command) Name() string      { return "commit" }
func (c *Command) Short() string     { return "c" }
func (c *Command) Aliases() []string { return []string{"ci"} }
func (c *Command) Usage() string     { return `commit -m "<message>" [options]` }
func (c *Command) Brief() string     { return "Record the tracked documents as a new commit" }
func (c *Command) Help() string {
	return `Snapshot every tracked document and record a commit on the current
branch (or on the detached history when HEAD is detached).

Options:
  -m, --message <msg>    Commit message. Repeat to add paragraphs.
      --agent            Record an agent author instead of a human one.
      --model <name>     Agent model (implies --agent).
      --session <id>     Agent session id (implies --agent).
      --new-session      Generate a fresh session id (implies --agent).
      --author <name>    Human author name (default $USER).
      --allow-empty      Commit even when nothing changed.

Examples:
  kvc commit -m "Add retry patterns"
  kvc commit -m "Summarise findings" --model claude --new-session`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&c.messages, "message", "m", nil, "commit message")
	fs.BoolVar(&c.agent, "agent", false, "agent author")
	fs.StringVar(&c.model, "model", "", "agent model")
	fs.StringVar(&c.session, "session", "", "agent session id")
	fs.BoolVar(&c.newSession, "new-session", false, "generate a session id")
	fs.StringVar(&c.author, "author", "", "human author name")
	fs.BoolVar(&c.allowEmpty, "allow-empty", false, "allow a commit without changes")
}

func (c *Command) Run(ctx *command.Context) error {
	messages := c.messages
	if len(messages) == 0 && len(ctx.Args) > 0 {
		messages = []string{strings.Join(ctx.Args, " ")}
	}
	if len(messages) == 0 {
		return command.Usagef("commit message required (use -m)")
	}
	if c.session != "" && c.newSession {
		return command.Usagef("--session and --new-session are mutually exclusive")
	}

	cmt, err := ctx.Repo.Commit(ctx, repo.CommitOptions{
		Message:    strings.Join(messages, "\n\n"),
		Author:     c.authorOf(ctx.Repo.Settings().Agent.Model()),
		AllowEmpty: c.allowEmpty,
	})
	if err != nil {
		return err
	}

	return ctx.Emit(cmt, func() error {
		yellow := color.New(color.FgYellow).SprintFunc()
		ctx.Printf("[%s %s] %s\n", ctx.Repo.Meta.DescribeHead(), yellow(cmt.Short()), firstLine(cmt.Message))
		ctx.Printf(" %d files changed, ~%d tokens", cmt.Summary.FilesChanged, cmt.Summary.TokenEstimate)
		if len(cmt.Summary.DomainsTouched) > 0 {
			ctx.Printf(", domains: %s", strings.Join(cmt.Summary.DomainsTouched, ", "))
		}
		ctx.Println()
		return nil
	})
}

func (c *Command) authorOf(defaultModel string) meta.Author {
	if !c.agent && c.model == "" && c.session == "" && !c.newSession {
		return command.HumanAuthor(c.author)
	}
	a := meta.Agent{Model: c.model, Session: c.session}
	if a.Model == "" {
		a.Model = defaultModel
	}
	if c.newSession {
		a.Session = uuid.NewString()
	}
	return a
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
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
