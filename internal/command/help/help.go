package help

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/middleware"
)

type Command struct{}

func (c *Command) Name() string      { return "help" }
func (c *Command) Short() string     { return "H" }
func (c *Command) Aliases() []string { return []string{"h", "?"} }
func (c *Command) Usage() string     { return "help [command]" }
func (c *Command) Brief() string     { return "Show help for commands" }
func (c *Command) Help() string {
	return `Display help information for commands.

Usage:
  help          List all commands.
  help <name>   Show detailed help for a specific command.`
}

func (c *Command) Flags(fs *pflag.FlagSet) {}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) > 0 {
		return runCommandHelp(ctx, strings.ToLower(ctx.Args[0]))
	}
	return runListAllCommands(ctx)
}

func runCommandHelp(ctx *command.Context, name string) error {
	cmd, ok := command.GetCommand(name)
	if !ok {
		return command.Usagef("unknown command %q", name)
	}

	gray := color.New(color.FgHiBlack).SprintFunc()
	if usage := cmd.Usage(); usage != "" {
		ctx.Printf("%s kvc %s\n\n", gray("Usage:"), usage)
	}
	ctx.Printf("%s\n\n", cmd.Help())

	names := cmd.Aliases()
	if s := cmd.Short(); s != "" {
		names = append(names, s)
	}
	if len(names) > 0 {
		ctx.Printf("Aliases: %s\n", strings.Join(names, ", "))
	}
	return nil
}

// groups orders the command list by topic. Commands missing here are listed
// under "Other".
var groups = []struct {
	title string
	names []string
}{
	{"Vault", []string{"init", "status", "summary", "verify", "export"}},
	{"History", []string{"commit", "log", "diff", "rewind"}},
	{"Branches", []string{"branch", "checkout", "merge"}},
	{"Context", []string{"context", "load", "unload", "pin", "unpin", "exclude", "include", "resolve"}},
	{"Agents", []string{"watch", "mcp"}},
}

func runListAllCommands(ctx *command.Context) error {
	commands := command.AllCommands()
	byName := make(map[string]command.Command, len(commands))
	longest := 0
	for _, cmd := range commands {
		byName[cmd.Name()] = cmd
		if l := len(cmd.Name()); l > longest {
			longest = l
		}
	}

	bold := color.New(color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	line := func(cmd command.Command) {
		desc := cmd.Brief()
		if desc == "" {
			desc = "-"
		}
		ctx.Printf("  %s%s%s\n", bold(cmd.Name()), strings.Repeat(" ", longest-len(cmd.Name())+2), desc)
	}

	ctx.Println("Usage: kvc [global options] <command> [args]")
	listed := map[string]bool{"help": true}
	for _, g := range groups {
		ctx.Printf("\n%s\n", gray(g.title+":"))
		for _, name := range g.names {
			if cmd, ok := byName[name]; ok {
				line(cmd)
				listed[name] = true
			}
		}
	}
	var other []command.Command
	for _, cmd := range commands {
		if !listed[cmd.Name()] {
			other = append(other, cmd)
		}
	}
	if len(other) > 0 {
		ctx.Printf("\n%s\n", gray("Other:"))
		for _, cmd := range other {
			line(cmd)
		}
	}

	ctx.Printf("\n%s -C/--vault <dir>, -v/--verbose, --format text|json|yaml\n", gray("Global options:"))
	ctx.Println("Run 'kvc help <command>' for the options of one command.")
	return nil
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithDebugArgsPrint(),
		),
	)
}
