package verify

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/middleware"
	"github.com/keshon/kvc/internal/progress"
	"github.com/keshon/kvc/internal/repo"
)

type Command struct {
	workers int
}

func (c *Command) Name() string      { return "verify" }
func (c *Command) Short() string     { return "v" }
func (c *Command) Aliases() []string { return []string{"fsck"} }
func (c *Command) Usage() string     { return "verify [--workers N]" }
func (c *Command) Brief() string     { return "Check that every stored object is present and intact" }
func (c *Command) Help() string {
	return `Re-hash every object referenced by any commit (snapshot manifests and
the documents they list) and report missing or damaged ones. Temp files left
by interrupted writes are removed.

Exits with status 1 when problems are found.

Options:
      --workers <n>    Parallel hashing workers (default: number of CPUs).`
}

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.IntVar(&c.workers, "workers", 0, "parallel workers")
}

func (c *Command) Run(ctx *command.Context) error {
	var tick func()
	var bar *progress.Tracker
	if ctx.Interactive() && !ctx.Structured() {
		hashes, _, _, err := ctx.Repo.Referenced()
		if err != nil {
			return err
		}
		bar = progress.New(ctx.ErrOut, len(hashes), "Verifying objects", "objects")
		tick = bar.Increment
	}

	rep, err := ctx.Repo.Verify(ctx, c.workers, tick)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if err := ctx.Emit(report(rep), func() error { return printText(ctx, rep) }); err != nil {
		return err
	}
	if !rep.OK() {
		return errs.E(errs.ErrStoreCorruption, "verify",
			fmt.Errorf("%d damaged or missing objects, %d unreadable snapshots", len(rep.Problems), len(rep.Unreadable)))
	}
	return nil
}

type problem struct {
	Hash   string `json:"hash" yaml:"hash"`
	Status string `json:"status" yaml:"status"`
}

type summary struct {
	Commits      int       `json:"commits" yaml:"commits"`
	Checked      int       `json:"checked" yaml:"checked"`
	Problems     []problem `json:"problems" yaml:"problems"`
	Unreadable   []string  `json:"unreadable" yaml:"unreadable"`
	TempsRemoved int       `json:"temps_removed" yaml:"temps_removed"`
	OK           bool      `json:"ok" yaml:"ok"`
}

func report(rep *repo.VerifyReport) summary {
	s := summary{
		Commits:      rep.Commits,
		Checked:      rep.Checked,
		Problems:     []problem{},
		Unreadable:   rep.Unreadable,
		TempsRemoved: rep.TempsRemoved,
		OK:           rep.OK(),
	}
	if s.Unreadable == nil {
		s.Unreadable = []string{}
	}
	for _, p := range rep.Problems {
		s.Problems = append(s.Problems, problem{p.Hash, p.Status.String()})
	}
	return s
}

func printText(ctx *command.Context, rep *repo.VerifyReport) error {
	ctx.Printf("%s commits, %s objects checked\n", humanize.Comma(int64(rep.Commits)), humanize.Comma(int64(rep.Checked)))
	for _, p := range rep.Problems {
		ctx.Printf("  %s %s\n", color.RedString("%-8s", p.Status), p.Hash)
	}
	for _, h := range rep.Unreadable {
		ctx.Printf("  %s %s\n", color.RedString("%-8s", "manifest"), h)
	}
	if rep.TempsRemoved > 0 {
		ctx.Printf("removed %d stale temp files\n", rep.TempsRemoved)
	}
	if rep.OK() {
		ctx.Println(color.GreenString("OK"))
	}
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
