package diff

import (
	"github.com/pmezard/go-difflib/difflib"
)

// ContextLines is the number of unchanged lines around each hunk.
const ContextLines = 3

// Patch renders a unified diff of one change. oldText and newText are the
// document contents before and after; either is empty for added or removed
// documents.
func Patch(c Change, oldText, newText string) (string, error) {
	from, to := "a/"+c.Path, "b/"+c.Path
	switch c.Kind {
	case Added:
		from = "/dev/null"
	case Removed:
		to = "/dev/null"
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: from,
		ToFile:   to,
		Context:  ContextLines,
	}
	return difflib.GetUnifiedDiffString(ud)
}
