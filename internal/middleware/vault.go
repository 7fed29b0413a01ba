package middleware

import (
	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/repo"
)

// WithVault opens the vault named by --vault, or the one containing the
// working directory, and hands it to the command.
func WithVault() command.Middleware {
	return func(cmd command.Command) command.Command {
		return &command.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *command.Context) error {
				r, err := repo.Open(ctx.Options.Dir, ctx.Log)
				if err != nil {
					return err
				}
				ctx.Repo = r
				return cmd.Run(ctx)
			},
		}
	}
}
