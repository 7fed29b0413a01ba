package log

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/meta"
)

type Command struct {
	limit   int
	oneline bool
	branch  string
	all     bool
	since   string
	until   string
}

func (c *Command) Name() string      { return "log" }
func (c *Command) Short() string     { return "" }
func (c *Command) Aliases() []string { return []string{"commits"} }
func (c *Command) Usage() string     { return "log [options] [ref]" }
func (c *Command) Brief() string     { return "Show commit history (HEAD by default)" }
func (c *Command) Help() string {
	return `Show the first-parent history of a ref, newest first.

Options:
  -n <count>            Limit to the last N commits.
      --oneline         One line per commit (short hash + subject).
  -b, --branch <name>   Show the history of a branch.
  -a, --all             Show every commit of every log, newest first.
      --since <date>    Only commits after the date (YYYY-MM-DD).
      --until <date>    Only commits before the date (YYYY-MM-DD).

Examples:
  kvc log
  kvc log --oneline -n 10
  kvc log -b feature
  kvc log HEAD~3`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.IntVarP(&c.limit, "number", "n", 0, "limit number of commits")
	fs.BoolVar(&c.oneline, "oneline", false, "show each commit on one line")
	fs.StringVarP(&c.branch, "branch", "b", "", "branch to show")
	fs.BoolVarP(&c.all, "all", "a", false, "show commits from all logs")
	fs.StringVar(&c.since, "since", "", "show commits after date YYYY-MM-DD")
	fs.StringVar(&c.until, "until", "", "show commits before date YYYY-MM-DD")
}

func (c *Command) Run(ctx *command.Context) error {
	r := ctx.Repo

	since, until, err := c.window()
	if err != nil {
		return err
	}

	var commits []*meta.Commit
	if c.all {
		all, err := r.Meta.AllCommits()
		if err != nil {
			return err
		}
		for i := len(all) - 1; i >= 0; i-- {
			commits = append(commits, all[i])
		}
	} else if c.branch != "" {
		if commits, err = r.Meta.BranchLog(c.branch, 0); err != nil {
			return err
		}
	} else {
		ref := "HEAD"
		if len(ctx.Args) > 0 {
			ref = ctx.Args[0]
		}
		hash, err := r.Meta.ResolveRef(ref)
		if err != nil {
			return err
		}
		if commits, err = r.Meta.FirstParentChain(hash, 0); err != nil {
			return err
		}
	}

	filtered := make([]*meta.Commit, 0, len(commits))
	for _, cmt := range commits {
		if !since.IsZero() && cmt.Timestamp.Before(since) {
			continue
		}
		if !until.IsZero() && cmt.Timestamp.After(until) {
			continue
		}
		filtered = append(filtered, cmt)
	}
	commits = filtered
	if c.limit > 0 && c.limit < len(commits) {
		commits = commits[:c.limit]
	}

	return ctx.Emit(commits, func() error {
		if len(commits) == 0 {
			ctx.Println("No commits found")
			return nil
		}
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		if c.oneline {
			for _, cmt := range commits {
				ctx.Printf("%s %s\n", yellow(cmt.Short()), subject(cmt.Message))
			}
			return nil
		}
		for _, cmt := range commits {
			ctx.Printf("%s %s\n", gray("commit"), yellow(cmt.Hash))
			if cmt.IsMerge() {
				short := make([]string, len(cmt.Parents))
				for i, p := range cmt.Parents {
					short[i] = meta.ShortHash(p)
				}
				ctx.Printf("%s  %s\n", gray("Merge:"), strings.Join(short, " "))
			}
			ctx.Printf("%s %s\n", gray("Author:"), cmt.Author)
			ctx.Printf("%s   %s (%s)\n", gray("Date:"), cmt.Timestamp.Local().Format("Mon Jan 2 15:04:05 2006"), humanize.Time(cmt.Timestamp))
			if s := cmt.Summary; s.FilesChanged > 0 {
				ctx.Printf("%s %d files, ~%d tokens", gray("Context:"), s.FilesChanged, s.TokenEstimate)
				if len(s.DomainsTouched) > 0 {
					ctx.Printf(", %s", strings.Join(s.DomainsTouched, ", "))
				}
				ctx.Println()
			}
			ctx.Println()
			for _, line := range strings.Split(cmt.Message, "\n") {
				if strings.TrimSpace(line) == "" {
					ctx.Println()
				} else {
					ctx.Printf("    %s\n", line)
				}
			}
			ctx.Println()
		}
		return nil
	})
}

func (c *Command) window() (since, until time.Time, err error) {
	if c.since != "" {
		if since, err = time.Parse("2006-01-02", c.since); err != nil {
			return since, until, command.Usagef("--since: %v", err)
		}
	}
	if c.until != "" {
		if until, err = time.Parse("2006-01-02", c.until); err != nil {
			return since, until, command.Usagef("--until: %v", err)
		}
		until = until.Add(24*time.Hour - time.Nanosecond)
	}
	return since, until, nil
}

func subject(msg string) string {
	line, _, _ := strings.Cut(msg, "\n")
	return line
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
