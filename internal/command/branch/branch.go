package branch

import (
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/meta"
)

type Command struct {
	from     string
	describe string
	delete   bool
}

func (c *Command) Name() string      { return "branch" }
func (c *Command) Short() string     { return "b" }
func (c *Command) Aliases() []string { return []string{"br"} }
func (c *Command) Usage() string     { return "branch [<name>] [--from <ref>] [--describe <text>] [-d <name>]" }
func (c *Command) Brief() string     { return "List, create, describe or delete branches" }
func (c *Command) Help() string {
	return `Manage branches.

  kvc branch                          list branches, * marks the current one
  kvc branch <name>                   create <name> at HEAD
  kvc branch <name> --from <ref>      create <name> at <ref>
  kvc branch <name> --describe <d>    create, or describe an existing branch
  kvc branch -d <name>                delete a branch ref

Deleting a branch keeps its commits: they stay in the commit log and remain
reachable by hash. The current branch cannot be deleted.`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.StringVar(&c.from, "from", "", "start point of a new branch")
	fs.StringVar(&c.describe, "describe", "", "branch description")
	fs.BoolVarP(&c.delete, "delete", "d", false, "delete the branch")
}

func (c *Command) Run(ctx *command.Context) error {
	r := ctx.Repo
	switch {
	case len(ctx.Args) == 0:
		if c.delete || c.from != "" || c.describe != "" {
			return command.Usagef("%s", c.Usage())
		}
		return c.list(ctx)

	case len(ctx.Args) > 1:
		return command.Usagef("%s", c.Usage())

	case c.delete:
		name := ctx.Args[0]
		b, err := r.Meta.GetBranch(name)
		if err != nil {
			return err
		}
		if err := r.DeleteBranch(ctx, name); err != nil {
			return err
		}
		return ctx.Emit(b, func() error {
			ctx.Printf("Deleted branch %s (was %s)\n", name, meta.ShortHash(b.Head))
			return nil
		})
	}

	name := ctx.Args[0]
	if r.Meta.BranchExists(name) && c.from == "" && c.describe != "" {
		if err := r.DescribeBranch(ctx, name, c.describe); err != nil {
			return err
		}
		b, err := r.Meta.GetBranch(name)
		if err != nil {
			return err
		}
		return ctx.Emit(b, func() error {
			ctx.Printf("Described branch %s\n", name)
			return nil
		})
	}

	b, err := r.CreateBranch(ctx, name, c.from, c.describe)
	if err != nil {
		return err
	}
	return ctx.Emit(b, func() error {
		ctx.Printf("Created branch %s at %s\n", color.GreenString(b.Name), color.YellowString(meta.ShortHash(b.Head)))
		return nil
	})
}

type listed struct {
	Name        string `json:"name" yaml:"name"`
	Head        string `json:"head" yaml:"head"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Current     bool   `json:"current" yaml:"current"`
}

func (c *Command) list(ctx *command.Context) error {
	branches, err := ctx.Repo.Meta.ListBranches()
	if err != nil {
		return err
	}
	current, err := ctx.Repo.CurrentBranch()
	if err != nil {
		return err
	}

	out := make([]listed, len(branches))
	for i, b := range branches {
		out[i] = listed{b.Name, b.Head, b.Description, b.Name == current}
	}

	return ctx.Emit(out, func() error {
		if current == "" {
			ctx.Printf("* %s\n", color.YellowString("(%s)", ctx.Repo.Meta.DescribeHead()))
		}
		for _, b := range out {
			mark, name := "  ", b.Name
			if b.Current {
				mark, name = "* ", color.GreenString(b.Name)
			}
			ctx.Printf("%s%s %s", mark, name, color.YellowString(meta.ShortHash(b.Head)))
			if b.Description != "" {
				ctx.Printf("  %s", b.Description)
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
