package file

import (
	"bufio"
	"bytes"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/keshon/kvc/internal/config"
	"github.com/keshon/kvc/internal/fs"
)

// Ignore matches vault-relative paths that must never be tracked.
type Ignore struct {
	static  map[string]bool
	pattern []string
}

var defaultIgnored = []string{config.MetaDir, config.IgnoreFile, ".DS_Store", ".git"}

// NewIgnore loads the defaults plus the patterns in ignoreFile, if present.
func NewIgnore(fsys fs.FS, ignoreFile string) *Ignore {
	m := &Ignore{static: make(map[string]bool)}
	for _, s := range defaultIgnored {
		m.static[s] = true
	}

	data, err := fsys.ReadFile(ignoreFile)
	if err != nil {
		return m
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.pattern = append(m.pattern, strings.TrimSuffix(line, "/"))
	}
	return m
}

// Add appends patterns.
func (m *Ignore) Add(patterns ...string) {
	m.pattern = append(m.pattern, patterns...)
}

// Match reports whether rel (slash separated, vault relative) is ignored.
// Patterns without a slash also match any path component, like .gitignore.
func (m *Ignore) Match(rel string) bool {
	clean := path.Clean(filepath.ToSlash(rel))
	base := path.Base(clean)

	if m.static[base] || fs.IsTemp(base) {
		return true
	}

	for _, pat := range m.pattern {
		if !strings.Contains(pat, "/") {
			if ok, _ := doublestar.Match(pat, base); ok {
				return true
			}
			continue
		}
		if MatchPattern(pat, clean) {
			return true
		}
	}
	return false
}

// MatchPattern handles *, ? and ** like Git. A malformed pattern matches
// nothing.
func MatchPattern(pattern, p string) bool {
	pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
	ok, err := doublestar.Match(pattern, path.Clean(filepath.ToSlash(p)))
	return err == nil && ok
}
