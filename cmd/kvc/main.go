package main

import (
	"context"
	"os"

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
	os.Exit(command.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
