// Package wikilink maps [[name]] style links onto tracked documents.
package wikilink

import (
	"fmt"
	"path"
	"strings"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/repo/store/file"
)

// Ext is the extension assumed for link targets.
const Ext = ".md"

// AmbiguousError is returned when a bare name matches more than one document.
type AmbiguousError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("wikilink [[%s]] is ambiguous: %s", e.Name, strings.Join(e.Candidates, ", "))
}

// Name strips the brackets, an alias ("|label") and a heading ("#section")
// from a link.
func Name(link string) string {
	s := strings.TrimSpace(link)
	s = strings.TrimPrefix(s, "[[")
	s = strings.TrimSuffix(s, "]]")
	if i := strings.IndexByte(s, '|'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(strings.TrimSpace(s), "/")
}

// Resolve returns the vault-relative path of the document link points at.
//
// A link containing a slash is first tried as a path below the tracked
// directory, with and without the extension. Otherwise every tracked document
// whose file name (without extension) equals the link is a candidate.
func Resolve(t *file.Tree, link string) (string, error) {
	name := Name(link)
	if name == "" {
		return "", errs.E(errs.ErrNotFound, "resolve wikilink", link, fmt.Errorf("empty link"))
	}

	if strings.Contains(name, "/") {
		for _, p := range []string{name + Ext, name} {
			rel := path.Join(t.Tracked, p)
			if t.Contains(rel) && t.Exists(rel) {
				return rel, nil
			}
		}
	}

	docs, err := t.Scan()
	if err != nil {
		return "", err
	}
	base := path.Base(name)
	var matches []string
	for _, d := range docs {
		if stem(d) != base {
			continue
		}
		if strings.Contains(name, "/") && !strings.HasSuffix(strings.TrimSuffix(d, path.Ext(d)), "/"+name) {
			continue
		}
		matches = append(matches, d)
	}

	switch len(matches) {
	case 0:
		return "", errs.E(errs.ErrNotFound, "resolve wikilink", name)
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{Name: name, Candidates: matches}
	}
}

func stem(p string) string {
	b := path.Base(p)
	return strings.TrimSuffix(b, path.Ext(b))
}

// Links extracts every distinct [[link]] in text, in order of appearance.
func Links(text string) []string {
	var out []string
	seen := map[string]bool{}
	for {
		i := strings.Index(text, "[[")
		if i < 0 {
			break
		}
		text = text[i+2:]
		j := strings.Index(text, "]]")
		if j < 0 {
			break
		}
		if n := Name(text[:j]); n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
		text = text[j+2:]
	}
	return out
}
