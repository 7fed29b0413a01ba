package summary

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/repo/store/file"
	"github.com/keshon/kvc/internal/util"
)

type Command struct {
	limit int
}

func (c *Command) Name() string      { return "summary" }
func (c *Command) Short() string     { return "" }
func (c *Command) Aliases() []string { return []string{"brief"} }
func (c *Command) Usage() string     { return "summary [-n N]" }
func (c *Command) Brief() string     { return "Session briefing: state, recent history, domains, branches" }
func (c *Command) Help() string {
	return `Print a compact briefing meant to be read at the start of a session:
the current branch and commit, the last N commits, the domains present in
the vault, uncommitted changes and the other branches.

Options:
  -n <count>    Number of recent commits (default 5).`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.IntVarP(&c.limit, "number", "n", 5, "recent commits to show")
}

type briefing struct {
	Head     string         `json:"head" yaml:"head"`
	Commit   *meta.Commit   `json:"commit,omitempty" yaml:"commit,omitempty"`
	Recent   []*meta.Commit `json:"recent" yaml:"recent"`
	Domains  []string       `json:"domains" yaml:"domains"`
	Modified []string       `json:"modified" yaml:"modified"`
	Branches []meta.Branch  `json:"branches" yaml:"branches"`
	Tokens   int            `json:"active_tokens" yaml:"active_tokens"`
}

func (c *Command) Run(ctx *command.Context) error {
	r := ctx.Repo
	st, err := r.Status()
	if err != nil {
		return err
	}
	b := briefing{Head: st.Head.String(), Commit: st.Commit, Tokens: st.Active.TotalTokens}

	if st.Commit != nil {
		if b.Recent, err = r.Meta.FirstParentChain(st.Commit.Hash, c.limit); err != nil {
			return err
		}
	}
	docs, err := r.Tree.Scan()
	if err != nil {
		return err
	}
	domains := map[string]bool{}
	for _, d := range docs {
		if dom := file.DomainOf(r.Tree.Tracked, d); dom != "" && !strings.HasPrefix(dom, "_") {
			domains[dom] = true
		}
	}
	b.Domains = util.SortedKeys(domains)
	b.Modified = st.Changes.Paths()
	if b.Branches, err = r.Meta.ListBranches(); err != nil {
		return err
	}

	return ctx.Emit(b, func() error {
		bold := color.New(color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		ctx.Println(bold("## Current state"))
		ctx.Printf("- HEAD: %s\n", color.GreenString(b.Head))
		if st.Commit != nil {
			ctx.Printf("- Last commit: %s %q (%s)\n", yellow(st.Commit.Short()), st.Commit.Message, humanize.Time(st.Commit.Timestamp))
		}
		ctx.Printf("- Active context: ~%s tokens\n", humanize.Comma(int64(b.Tokens)))
		ctx.Println()

		ctx.Println(bold("## Recent commits"))
		for _, rc := range b.Recent {
			line, _, _ := strings.Cut(rc.Message, "\n")
			ctx.Printf("- %s %s (%s, %s)\n", yellow(rc.Short()), line, rc.Author, humanize.Time(rc.Timestamp))
		}
		ctx.Println()

		ctx.Println(bold("## Domains"))
		if len(b.Domains) == 0 {
			ctx.Println("- none yet")
		}
		for _, d := range b.Domains {
			ctx.Printf("- %s (see [[%s]])\n", d, d)
		}
		ctx.Println()

		ctx.Println(bold("## Uncommitted changes"))
		if len(b.Modified) == 0 {
			ctx.Println("- none")
		}
		for _, ch := range st.Changes.Changes {
			ctx.Printf("- %s %s\n", ch.Kind.Symbol(), ch.Path)
		}
		ctx.Println()

		ctx.Println(bold("## Branches"))
		for _, br := range b.Branches {
			mark := ""
			if br.Name == b.Head {
				mark = " (current)"
			}
			ctx.Printf("- %s %s%s", br.Name, meta.ShortHash(br.Head), mark)
			if br.Description != "" {
				ctx.Printf(": %s", br.Description)
			}
			ctx.Println()
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
