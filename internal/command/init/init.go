package initcmd

import (
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/repo"
)

type Command struct {
	hash    string
	tracked string
	author  string
}

func (c *Command) Name() string      { return "init" }
func (c *Command) Short() string     { return "i" }
func (c *Command) Aliases() []string { return []string{"initialize"} }
func (c *Command) Usage() string     { return "init [name] [options]" }
func (c *Command) Brief() string     { return "Create a new vault in the current directory" }
func (c *Command) Help() string {
	return `Create a vault: the .kvc metadata directory, config.toml, an empty
tracked directory and a root commit on the default branch.

Documents already present in the tracked directory are captured by the root
commit.

Options:
      --hash <algo>      Object hash: sha256 (default) or xxh3.
      --tracked <dir>    Tracked directory (default "domains").
      --author <name>    Author of the root commit (default $USER).

Examples:
  kvc init
  kvc init research --hash xxh3`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.StringVar(&c.hash, "hash", "", "object hash algorithm (sha256 or xxh3)")
	fs.StringVar(&c.tracked, "tracked", "", "tracked directory")
	fs.StringVar(&c.author, "author", "", "author of the root commit")
}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) > 1 {
		return command.Usagef("%s", c.Usage())
	}
	dir := ctx.Options.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	name := filepath.Base(dir)
	if len(ctx.Args) == 1 {
		name = ctx.Args[0]
	}

	r, err := repo.InitAt(ctx, dir, repo.InitOptions{
		Name:       name,
		Hash:       c.hash,
		TrackedDir: c.tracked,
		Author:     command.HumanAuthor(c.author),
		Log:        ctx.Log,
	})
	if err != nil {
		return err
	}
	root, err := r.Meta.HeadCommit()
	if err != nil {
		return err
	}

	out := struct {
		Vault   string `json:"vault" yaml:"vault"`
		Name    string `json:"name" yaml:"name"`
		Branch  string `json:"branch" yaml:"branch"`
		Commit  string `json:"commit" yaml:"commit"`
		Tracked string `json:"tracked" yaml:"tracked"`
		Files   int    `json:"files" yaml:"files"`
	}{dir, name, r.Settings().Core.DefaultBranch, root.Hash, r.Tree.Tracked, root.Summary.FilesChanged}

	return ctx.Emit(out, func() error {
		green := color.New(color.FgGreen).SprintFunc()
		ctx.Printf("%s vault %q in %s\n", green("Initialized"), name, dir)
		ctx.Printf("  branch  %s\n", out.Branch)
		ctx.Printf("  commit  %s (%d files)\n", root.Short(), out.Files)
		ctx.Printf("  tracked %s/\n", out.Tracked)
		return nil
	})
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithDebugArgsPrint(),
		),
	)
}
