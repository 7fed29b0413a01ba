package command

import (
	"strings"

	"github.com/fatih/color"

	"github.com/keshon/kvc/internal/repo/index"
	"github.com/keshon/kvc/internal/wikilink"
)

// VaultPaths turns command arguments into vault-relative selectors. A
// [[wikilink]] is resolved to its document, anything else is taken as a path
// or glob relative to the vault root.
func (c *Context) VaultPaths(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "[[") {
			p, err := wikilink.Resolve(c.Repo.Tree, a)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
			continue
		}
		p, err := c.Repo.Tree.Rel(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// IndexReport prints the outcome of a context index update followed by the
// size of the resulting active set.
func (c *Context) IndexReport(verb string, paths, warnings []string) error {
	act, err := c.Repo.ActiveSet()
	if err != nil {
		return err
	}
	out := struct {
		Paths    []string      `json:"paths" yaml:"paths"`
		Warnings []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
		Active   *index.Active `json:"active" yaml:"active"`
	}{paths, warnings, act}

	return c.Emit(out, func() error {
		for _, w := range warnings {
			c.Printf("%s %s\n", color.YellowString("warning:"), w)
		}
		for _, p := range paths {
			c.Printf("%s %s\n", verb, p)
		}
		c.Printf("active context: %d files, ~%d tokens\n", len(act.Entries), act.TotalTokens)
		if act.OverBudget {
			c.Printf("%s over the %d token budget\n", color.RedString("warning:"), act.MaxTokens)
		}
		return nil
	})
}

// ActiveReport lists the active set with per-document token estimates.
func (c *Context) ActiveReport() error {
	act, err := c.Repo.ActiveSet()
	if err != nil {
		return err
	}
	return c.Emit(act, func() error {
		for _, e := range act.Entries {
			pin := ""
			if e.Pinned {
				pin = " (pinned)"
			}
			c.Printf("%7d  %s%s\n", e.Tokens, e.Path, pin)
		}
		c.Printf("%7d  total of %d max\n", act.TotalTokens, act.MaxTokens)
		return nil
	})
}
