package command

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/keshon/kvc/internal/repo/meta"
)

// Structured reports whether the user asked for json or yaml output.
func (c *Context) Structured() bool {
	return c.Options.Format == "json" || c.Options.Format == "yaml"
}

// Emit writes v in the requested structured format, or calls text for the
// default human output.
func (c *Context) Emit(v any, text func() error) error {
	switch c.Options.Format {
	case "json":
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(c.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text()
	}
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes a line to the command output.
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Interactive reports whether the output is a terminal.
func (c *Context) Interactive() bool {
	f, ok := c.Out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Usagef returns an error rendered as a usage mistake.
func Usagef(format string, args ...any) error {
	return fmt.Errorf("usage: "+format, args...)
}

// HumanAuthor is the author of commands run by a person: name, or $USER.
func HumanAuthor(name string) meta.Author {
	if name = strings.TrimSpace(name); name == "" {
		name = os.Getenv("USER")
		if name == "" {
			name = os.Getenv("USERNAME")
		}
	}
	return meta.Human{Name: name}
}
