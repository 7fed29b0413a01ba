package index

import (
	"fmt"
	"io"
	"strings"
)

// Render writes the active documents as one text, each under a
// "# File: <path>" heading. Compress trims trailing blanks and collapses
// runs of empty lines.
func Render(w io.Writer, act *Active, read func(string) ([]byte, error), compress bool) error {
	var b strings.Builder
	for _, e := range act.Entries {
		data, err := read(e.Path)
		if err != nil {
			return fmt.Errorf("read %q: %w", e.Path, err)
		}
		fmt.Fprintf(&b, "\n# File: %s\n\n", e.Path)
		b.Write(data)
		b.WriteString("\n\n")
	}
	out := b.String()
	if compress {
		out = Compress(out)
	}
	_, err := io.WriteString(w, out)
	return err
}

// Compress trims trailing whitespace from every line and collapses three or
// more consecutive newlines into two.
func Compress(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	s = strings.Join(lines, "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
