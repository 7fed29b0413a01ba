// Package file reads and writes the tracked document tree of a vault.
package file

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/keshon/kvc/internal/config"
	"github.com/keshon/kvc/internal/fs"
)

// MmapThreshold is the size from which documents on the OS filesystem are
// read through a memory map.
const MmapThreshold = 1 << 20

// Tree is the working tree of a vault. Paths handed in and out are
// slash-separated and relative to Root.
type Tree struct {
	Root    string
	Tracked string // tracked directory relative to Root, "." for the whole vault
	FS      fs.FS
	Ignore  *Ignore
}

// NewTree returns the tree of the vault at root, tracking the tracked dir.
func NewTree(root, tracked string, fsys fs.FS) *Tree {
	if tracked == "" {
		tracked = "."
	}
	return &Tree{
		Root:    root,
		Tracked: path.Clean(filepath.ToSlash(tracked)),
		FS:      fsys,
		Ignore:  NewIgnore(fsys, filepath.Join(root, config.IgnoreFile)),
	}
}

// Abs converts a vault-relative path to a filesystem path.
func (t *Tree) Abs(rel string) string {
	return filepath.Join(t.Root, filepath.FromSlash(rel))
}

// Rel converts a filesystem path or a path relative to the working directory
// into a clean vault-relative slash path.
func (t *Tree) Rel(p string) (string, error) {
	if filepath.IsAbs(p) {
		r, err := filepath.Rel(t.Root, p)
		if err != nil {
			return "", err
		}
		p = r
	}
	p = path.Clean(filepath.ToSlash(p))
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("path %q is outside the vault", p)
	}
	return p, nil
}

// Contains reports whether rel lies inside the tracked directory and is not
// ignored.
func (t *Tree) Contains(rel string) bool {
	rel = path.Clean(filepath.ToSlash(rel))
	if t.Ignore.Match(rel) {
		return false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == config.MetaDir {
			return false
		}
	}
	if t.Tracked == "." {
		return rel != "." && !strings.HasPrefix(rel, "../")
	}
	return strings.HasPrefix(rel, t.Tracked+"/")
}

// Scan returns every tracked document, sorted.
func (t *Tree) Scan() ([]string, error) {
	var out []string
	if err := t.walk(t.Tracked, &out); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (t *Tree) walk(rel string, out *[]string) error {
	entries, err := t.FS.ReadDir(t.Abs(rel))
	if err != nil {
		if t.FS.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scan %q: %w", rel, err)
	}
	for _, e := range entries {
		child := path.Join(rel, e.Name())
		if e.Name() == config.MetaDir || t.Ignore.Match(child) {
			continue
		}
		if e.IsDir() {
			if err := t.walk(child, out); err != nil {
				return err
			}
			continue
		}
		if !e.Type().IsRegular() {
			continue // symlinks, sockets
		}
		*out = append(*out, child)
	}
	return nil
}

// Read returns the content of a document.
func (t *Tree) Read(rel string) ([]byte, error) {
	abs := t.Abs(rel)
	if _, ok := t.FS.(*fs.OSFS); ok {
		if fi, err := t.FS.Stat(abs); err == nil && fi.Size() >= MmapThreshold {
			return readMapped(abs)
		}
	}
	return t.FS.ReadFile(abs)
}

func readMapped(abs string) ([]byte, error) {
	r, err := mmap.Open(abs)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	buf := make([]byte, r.Len())
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("read %q: %w", abs, err)
	}
	return buf, nil
}

// Write replaces a document atomically, creating parent directories.
func (t *Tree) Write(rel string, data []byte) error {
	return fs.WriteFileAtomic(t.FS, t.Abs(rel), data, 0o644)
}

// Remove deletes a document and prunes directories it leaves empty, up to
// the tracked root.
func (t *Tree) Remove(rel string) error {
	if err := t.FS.Remove(t.Abs(rel)); err != nil && !t.FS.IsNotExist(err) {
		return err
	}
	stop := t.Tracked
	for dir := path.Dir(rel); dir != "." && dir != stop && dir != "/"; dir = path.Dir(dir) {
		entries, err := t.FS.ReadDir(t.Abs(dir))
		if err != nil || len(entries) > 0 {
			break
		}
		if err := t.FS.Remove(t.Abs(dir)); err != nil {
			break
		}
	}
	return nil
}

// Size returns the byte size of a document.
func (t *Tree) Size(rel string) (int64, error) {
	fi, err := t.FS.Stat(t.Abs(rel))
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Exists reports whether the document exists.
func (t *Tree) Exists(rel string) bool {
	return t.FS.Exists(t.Abs(rel))
}

// Domain returns the domain of a tracked path: the first path component
// below the tracked directory, or "" for documents at its top level.
func (t *Tree) Domain(rel string) string {
	return DomainOf(t.Tracked, rel)
}

// DomainOf is Domain without a Tree.
func DomainOf(tracked, rel string) string {
	rel = path.Clean(filepath.ToSlash(rel))
	if tracked != "" && tracked != "." {
		if !strings.HasPrefix(rel, tracked+"/") {
			return ""
		}
		rel = strings.TrimPrefix(rel, tracked+"/")
	}
	dom, _, nested := strings.Cut(rel, "/")
	if !nested {
		return ""
	}
	return dom
}
