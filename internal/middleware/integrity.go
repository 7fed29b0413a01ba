package middleware

import (
	"fmt"

	"github.com/keshon/kvc/internal/command"
	"github.com/keshon/kvc/internal/errs"
)

// WithHeadCheck makes sure HEAD resolves to a readable commit before a
// mutating command runs. It must be applied after WithVault.
func WithHeadCheck() command.Middleware {
	return func(cmd command.Command) command.Command {
		return &command.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *command.Context) error {
				if ctx.Repo == nil {
					return fmt.Errorf("%s: vault not opened", cmd.Name())
				}
				c, err := ctx.Repo.Meta.HeadCommit()
				if err != nil {
					return err
				}
				if !ctx.Repo.Objects.Has(c.Snapshot) {
					return errs.E(errs.ErrCorruptSnapshot, cmd.Name(), c.Snapshot).WithHead(ctx.Repo.Meta.DescribeHead())
				}
				return cmd.Run(ctx)
			},
		}
	}
}
