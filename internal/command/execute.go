package command

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/logging"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitUsage  = 2
	// ExitTempFail signals a retryable failure (the vault lock was busy).
	ExitTempFail = 75
)

// Version is stamped by the build.
var Version = "dev"

// NewRoot builds the cobra command tree from the registry.
func NewRoot(out, errw io.Writer) *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:           "kvc",
		Short:         "Version control for knowledge vaults",
		Long:          "kvc versions a tree of knowledge documents and tracks the context an agent works with.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errw)
	root.PersistentFlags().StringVarP(&opts.Dir, "vault", "C", "", "vault directory (default: search upwards from the working directory)")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	root.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format: text, json or yaml")

	for _, cmd := range AllCommands() {
		if cmd.Name() == "help" {
			continue
		}
		root.AddCommand(toCobra(cmd, opts, out, errw))
	}
	if h, ok := GetCommand("help"); ok {
		root.SetHelpCommand(toCobra(h, opts, out, errw))
	}
	return root
}

func toCobra(cmd Command, opts *Options, out, errw io.Writer) *cobra.Command {
	aliases := append([]string(nil), cmd.Aliases()...)
	if s := cmd.Short(); s != "" {
		aliases = append(aliases, s)
	}
	cc := &cobra.Command{
		Use:     cmd.Usage(),
		Aliases: aliases,
		Short:   cmd.Brief(),
		Long:    cmd.Help(),
	}
	if cc.Use == "" {
		cc.Use = cmd.Name()
	}
	cmd.Flags(cc.Flags())
	cc.RunE = func(c *cobra.Command, args []string) error {
		switch opts.Format {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown --format %q (want text, json or yaml)", opts.Format)
		}
		level := "warn"
		if opts.Verbose {
			level = "debug"
		}
		return cmd.Run(&Context{
			Context: c.Context(),
			Args:    args,
			Flags:   c.Flags(),
			Options: *opts,
			Out:     out,
			ErrOut:  errw,
			Log:     logging.New(level, errw),
		})
	}
	return cc
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, out, errw io.Writer) int {
	root := NewRoot(out, errw)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	PrintError(errw, err)
	switch {
	case errs.Retryable(err):
		return ExitTempFail
	case errs.KindOf(err) == nil && isUsageError(err):
		return ExitUsage
	default:
		return ExitFailed
	}
}

// PrintError renders err for a terminal.
func PrintError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %v\n", red("error:"), err)
	if errs.Retryable(err) {
		fmt.Fprintln(w, "  another kvc process holds the vault lock; retry in a moment")
	}
	if errs.Fatal(err) {
		fmt.Fprintln(w, "  the vault history is damaged; run `kvc verify` to inspect it")
	}
}

func isUsageError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.Contains(msg, "accepts ") ||
		strings.HasPrefix(msg, "usage:")
}
