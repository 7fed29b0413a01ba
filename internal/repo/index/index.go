// Package index tracks which tracked documents make up the active context
// of a session: loaded, pinned and excluded paths.
package index

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/keshon/kvc/internal/config"
	"github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/repo/store/file"
	"github.com/keshon/kvc/internal/util"
)

// State is the persisted content of the index file. Entries are vault
// relative paths, directories or glob patterns.
type State struct {
	Loaded   []string `json:"loaded"`
	Pinned   []string `json:"pinned"`
	Excluded []string `json:"excluded"`
}

// Index is the context index of one vault.
type Index struct {
	Path      string
	FS        fs.FS
	Pins      config.PinSettings
	MaxTokens int

	State
}

// Open reads the index file. A missing file yields an empty index.
func Open(fsys fs.FS, indexPath string, settings *config.Settings) (*Index, error) {
	if settings == nil {
		settings = config.Defaults()
	}
	ix := &Index{
		Path:      indexPath,
		FS:        fsys,
		Pins:      settings.Pins,
		MaxTokens: settings.Context.MaxTokens,
	}
	if err := util.ReadJSON(fsys, indexPath, &ix.State); err != nil {
		if !fsys.IsNotExist(err) {
			return nil, fmt.Errorf("read index %q: %w", indexPath, err)
		}
	}
	ix.normalize()
	return ix, nil
}

func (ix *Index) normalize() {
	ix.Loaded = normalizeList(ix.Loaded)
	ix.Pinned = normalizeList(ix.Pinned)
	ix.Excluded = normalizeList(ix.Excluded)
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = Clean(p); p != "" {
			out = append(out, p)
		}
	}
	return util.SortedSet(out)
}

// Clean turns an entry into its canonical slash form.
func Clean(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = path.Clean(filepath.ToSlash(p))
	if p == "." {
		return ""
	}
	return strings.TrimPrefix(p, "./")
}

// Save publishes the index atomically.
func (ix *Index) Save() error {
	ix.normalize()
	return util.WriteJSON(ix.FS, ix.Path, ix.State)
}

// Covers reports whether entry selects p: the same path, a directory
// containing it, or a glob matching it.
func Covers(entry, p string) bool {
	entry, p = Clean(entry), Clean(p)
	if entry == "" || p == "" {
		return false
	}
	if entry == p || strings.HasPrefix(p, entry+"/") {
		return true
	}
	if strings.ContainsAny(entry, "*?[") {
		return file.MatchPattern(entry, p)
	}
	return false
}

func coveredBy(entries []string, p string) bool {
	for _, e := range entries {
		if Covers(e, p) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether p matches an exclude pattern or never_load.
func (ix *Index) IsExcluded(p string) bool {
	return coveredBy(ix.Excluded, p) || coveredBy(ix.Pins.NeverLoad, p)
}

// IsPinned reports whether p is pinned explicitly or through always_load.
func (ix *Index) IsPinned(p string) bool {
	return coveredBy(ix.Pinned, p) || coveredBy(ix.Pins.AlwaysLoad, p)
}

func add(list []string, paths []string) []string {
	for _, p := range paths {
		if p = Clean(p); p != "" && !slices.Contains(list, p) {
			list = append(list, p)
		}
	}
	return util.SortedSet(list)
}

func remove(list []string, paths []string) []string {
	drop := make(map[string]bool, len(paths))
	for _, p := range paths {
		drop[Clean(p)] = true
	}
	out := list[:0:0]
	for _, p := range list {
		if !drop[p] {
			out = append(out, p)
		}
	}
	return out
}

// Load adds paths to the loaded set. Excluded paths are left out and
// reported as warnings.
func (ix *Index) Load(paths []string) []string {
	var warnings, ok []string
	for _, p := range paths {
		p = Clean(p)
		if p == "" {
			continue
		}
		if ix.IsExcluded(p) {
			warnings = append(warnings, fmt.Sprintf("%s is excluded; include it first", p))
			continue
		}
		ok = append(ok, p)
	}
	ix.Loaded = add(ix.Loaded, ok)
	return warnings
}

// Unload removes paths from the loaded set. Pins are unaffected.
func (ix *Index) Unload(paths []string) {
	ix.Loaded = remove(ix.Loaded, paths)
}

// UnloadAll empties the loaded set, keeping pins.
func (ix *Index) UnloadAll() {
	ix.Loaded = []string{}
}

// ResetLoaded replaces the loaded set.
func (ix *Index) ResetLoaded(paths []string) {
	ix.Loaded = normalizeList(paths)
}

// Pin adds paths to the pinned set. Pinning an excluded path is recorded
// but has no effect until it is included again; a warning says so.
func (ix *Index) Pin(paths []string) []string {
	var warnings []string
	for _, p := range paths {
		if ix.IsExcluded(p) {
			warnings = append(warnings, fmt.Sprintf("%s is excluded and stays out of the active set", Clean(p)))
		}
	}
	ix.Pinned = add(ix.Pinned, paths)
	return warnings
}

// Unpin removes paths from the pinned set, together with an identical
// exclude entry.
func (ix *Index) Unpin(paths []string) {
	ix.Pinned = remove(ix.Pinned, paths)
	ix.Excluded = remove(ix.Excluded, paths)
}

// Exclude adds exclude patterns.
func (ix *Index) Exclude(patterns []string) {
	ix.Excluded = add(ix.Excluded, patterns)
}

// Include removes exclude patterns.
func (ix *Index) Include(patterns []string) {
	ix.Excluded = remove(ix.Excluded, patterns)
}
