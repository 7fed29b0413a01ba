package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/middleware"
)

type Command struct{}

func (c *Command) Name() string      { return "export" }
func (c *Command) Short() string     { return "" }
func (c *Command) Aliases() []string { return []string{"archive"} }
func (c *Command) Usage() string     { return "export <ref> <out.tar.gz|->" }
func (c *Command) Brief() string     { return "Write the documents of a commit as a tar.gz archive" }
func (c *Command) Help() string {
	return `Export the snapshot of <ref> as a gzip compressed tar archive. Use "-"
to write the archive to standard output.

Examples:
  kvc export main vault.tar.gz
  kvc export HEAD~1 - | tar -tzf -`
}

func (c *Command) Flags(fs *pflag.FlagSet) {}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) != 2 {
		return command.Usagef("%s", c.Usage())
	}
	ref, out := ctx.Args[0], ctx.Args[1]
	if out == "-" {
		return ctx.Repo.Export(ref, ctx.Out)
	}

	f, err := os.CreateTemp(filepath.Dir(out), fs.TempPrefix+"export-*")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer os.Remove(f.Name())
	if err := ctx.Repo.Export(ref, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), out); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fi, err := os.Stat(out)
	if err != nil {
		return err
	}
	return ctx.Emit(map[string]any{"ref": ref, "path": out, "size": fi.Size()}, func() error {
		ctx.Printf("wrote %s (%s)\n", out, humanize.Bytes(uint64(fi.Size())))
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
