package resolve

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo/index"
	"github.com/keshon/kvc/internal/wikilink"
)

type Command struct {
	load bool
	pin  bool
}

func (c *Command) Name() string      { return "resolve" }
func (c *Command) Short() string     { return "r" }
func (c *Command) Aliases() []string { return []string{"link"} }
func (c *Command) Usage() string     { return "resolve <[[link]]> [--load|--pin]" }
func (c *Command) Brief() string     { return "Resolve a wikilink to a tracked document" }
func (c *Command) Help() string {
	return `Map [[name]] or [[dir/name]] to the tracked document it refers to.
A bare name matches any document with that file name; when several match,
all candidates are listed and nothing is loaded.

Options:
      --load    Add the document to the loaded set.
      --pin     Pin the document.

Examples:
  kvc resolve "[[patterns]]"
  kvc resolve auth/patterns --load`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.load, "load", false, "load the resolved document")
	fs.BoolVar(&c.pin, "pin", false, "pin the resolved document")
}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) != 1 {
		return command.Usagef("%s", c.Usage())
	}
	p, err := wikilink.Resolve(ctx.Repo.Tree, ctx.Args[0])
	if err != nil {
		var amb *wikilink.AmbiguousError
		if errors.As(err, &amb) && !ctx.Structured() {
			ctx.Printf("%s [[%s]] matches %d documents:\n", color.YellowString("ambiguous:"), amb.Name, len(amb.Candidates))
			for _, cand := range amb.Candidates {
				ctx.Printf("  %s\n", cand)
			}
		}
		return err
	}

	var warnings []string
	if c.load || c.pin {
		err := ctx.Repo.UpdateIndex(ctx, func(ix *index.Index) error {
			if c.load {
				warnings = append(warnings, ix.Load([]string{p})...)
			}
			if c.pin {
				warnings = append(warnings, ix.Pin([]string{p})...)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	out := struct {
		Link     string   `json:"link" yaml:"link"`
		Path     string   `json:"path" yaml:"path"`
		Loaded   bool     `json:"loaded" yaml:"loaded"`
		Pinned   bool     `json:"pinned" yaml:"pinned"`
		Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	}{wikilink.Name(ctx.Args[0]), p, c.load, c.pin, warnings}

	return ctx.Emit(out, func() error {
		for _, w := range warnings {
			ctx.Printf("%s %s\n", color.YellowString("warning:"), w)
		}
		ctx.Println(p)
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
