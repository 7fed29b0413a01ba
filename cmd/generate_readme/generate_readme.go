package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/spf13/pflag"

	"github.com/keshon/kvc/internal/command"
	_ "github.com/keshon/kvc/internal/command/branch"
	_ "github.com/keshon/kvc/internal/command/checkout"
	_ "github.com/keshon/kvc/internal/command/commit"
	_ "github.com/keshon/kvc/internal/command/context"
	_ "github.com/keshon/kvc/internal/command/diff"
	_ "github.com/keshon/kvc/internal/command/exclude"
	_ "github.com/keshon/kvc/internal/command/export"
	_ "github.com/keshon/kvc/internal/command/help"
	_ "github.com/keshon/kvc/internal/command/init"
	_ "github.com/keshon/kvc/internal/command/load"
	_ "github.com/keshon/kvc/internal/command/log"
	_ "github.com/keshon/kvc/internal/command/mcp"
	_ "github.com/keshon/kvc/internal/command/merge"
	_ "github.com/keshon/kvc/internal/command/pin"
	_ "github.com/keshon/kvc/internal/command/resolve"
	_ "github.com/keshon/kvc/internal/command/rewind"
	_ "github.com/keshon/kvc/internal/command/status"
	_ "github.com/keshon/kvc/internal/command/summary"
	_ "github.com/keshon/kvc/internal/command/verify"
	_ "github.com/keshon/kvc/internal/command/watch"
)

func main() {
	tplBytes, err := os.ReadFile("README.md.tmpl")
	if err != nil {
		fmt.Printf("Failed to read template: %v\n", err)
		os.Exit(1)
	}

	tpl, err := template.New("readme").Parse(string(tplBytes))
	if err != nil {
		fmt.Printf("Failed to parse template: %v\n", err)
		os.Exit(1)
	}

	commands := command.AllCommands()

	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name() < commands[j].Name()
	})

	var index, sections strings.Builder
	for _, cmd := range commands {
		fmt.Fprintf(&index, "| `%s` | %s |\n", cmd.Name(), cmd.Brief())

		aliases := cmd.Aliases()
		if s := cmd.Short(); s != "" {
			aliases = append(aliases, s)
		}
		fmt.Fprintf(&sections, "### %s\n", cmd.Name())
		if len(aliases) > 0 {
			fmt.Fprintf(&sections, "Aliases: `%s`\n\n", strings.Join(aliases, "`, `"))
		}
		fmt.Fprintf(&sections, "```\nkvc %s\n\n%s\n```\n\n", cmd.Usage(), cmd.Help())
	}

	data := map[string]string{
		"CommandIndex":    index.String(),
		"CommandSections": sections.String(),
		"GlobalFlags":     globalFlags(),
	}

	outFile, err := os.Create("README.md")
	if err != nil {
		fmt.Printf("Failed to create README.md: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	if err := tpl.Execute(outFile, data); err != nil {
		fmt.Printf("Failed to render template: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("README.md generated successfully")
}

func globalFlags() string {
	fs := pflag.NewFlagSet("kvc", pflag.ContinueOnError)
	command.NewRoot(os.Stdout, os.Stderr).PersistentFlags().VisitAll(func(f *pflag.Flag) {
		fs.AddFlag(f)
	})
	return fs.FlagUsages()
}
