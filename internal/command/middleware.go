package command

// Middleware decorates a command, usually to prepare the Context or check
// the vault before Run.
type Middleware func(Command) Command

// WrappedCommand replaces Run of the embedded command with Wrap. Name, flags
// and help text are those of the embedded command.
type WrappedCommand struct {
	Command
	Wrap func(ctx *Context) error
}

func (w *WrappedCommand) Run(ctx *Context) error {
	if w.Wrap == nil {
		return w.Command.Run(ctx)
	}
	return w.Wrap(ctx)
}

// ApplyMiddlewares wraps cmd with each of mws in turn. The last middleware
// is the outermost, so it runs first.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
