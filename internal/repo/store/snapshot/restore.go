package snapshot

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/repo/store/file"
)

// RestoreStats reports what a restore changed.
type RestoreStats struct {
	Written   int
	Unchanged int
	Removed   int
}

// Restore makes dest an exact replica of the snapshot: every manifest entry
// is written and every tracked document absent from the manifest is removed.
// All objects are fetched before the tree is touched, so a missing object
// fails with errs.ErrCorruptSnapshot and leaves dest as it was.
func (e *Engine) Restore(hash string, dest *file.Tree) (RestoreStats, error) {
	var stats RestoreStats

	m, err := e.Load(hash)
	if err != nil {
		return stats, err
	}

	contents := make(map[string][]byte, len(m.Files))
	for _, entry := range m.Files {
		data, err := e.Content(entry)
		if err != nil {
			return stats, err
		}
		contents[entry.Path] = data
	}

	current, err := dest.Scan()
	if err != nil {
		return stats, fmt.Errorf("scan destination: %w", err)
	}

	for _, entry := range m.Files {
		if existing, err := dest.Read(entry.Path); err == nil && e.Objects.Hash(existing) == entry.Hash {
			stats.Unchanged++
			continue
		}
		if err := dest.Write(entry.Path, contents[entry.Path]); err != nil {
			return stats, fmt.Errorf("restore %q: %w", entry.Path, err)
		}
		stats.Written++
	}

	for _, p := range current {
		if _, ok := m.Lookup(p); ok {
			continue
		}
		if err := dest.Remove(p); err != nil {
			return stats, fmt.Errorf("remove %q: %w", p, err)
		}
		stats.Removed++
	}

	e.Log.Debug("snapshot restored",
		zap.String("hash", hash),
		zap.Int("written", stats.Written),
		zap.Int("removed", stats.Removed))
	return stats, nil
}
