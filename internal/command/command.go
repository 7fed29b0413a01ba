package command

import (
	"context"
	"io"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/repo"
)

// Command represents a cli command
type Command interface {
	Name() string
	Short() string
	Aliases() []string
	Usage() string
	Brief() string
	Help() string
	Flags(fs *pflag.FlagSet)
	Run(ctx *Context) error
}

// Options are the global flags shared by every command.
type Options struct {
	Dir     string // vault directory, "" for the working directory
	Verbose bool
	Format  string // text, json or yaml
}

// Context represents a cli context
type Context struct {
	context.Context

	Args    []string
	Flags   *pflag.FlagSet
	Options Options
	Out     io.Writer
	ErrOut  io.Writer
	Log     *zap.Logger

	// Repo is set by the WithVault middleware.
	Repo *repo.Repository
}
