package snapshot

import (
	"encoding/json"
	"sort"
)

// Entry is one tracked document in a snapshot.
type Entry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Manifest lists every document of a snapshot, sorted by path.
type Manifest struct {
	Files      []Entry `json:"files"`
	TotalFiles int     `json:"total_files"`
	TotalSize  int64   `json:"total_size"`
}

// NewManifest sorts entries and fills the totals.
func NewManifest(entries []Entry) *Manifest {
	files := append([]Entry(nil), entries...)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	m := &Manifest{Files: files, TotalFiles: len(files)}
	for _, e := range files {
		m.TotalSize += e.Size
	}
	if m.Files == nil {
		m.Files = []Entry{}
	}
	return m
}

// Encode returns the canonical serialisation that is hashed and stored.
func (m *Manifest) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Lookup finds the entry for path.
func (m *Manifest) Lookup(path string) (Entry, bool) {
	i := sort.Search(len(m.Files), func(i int) bool { return m.Files[i].Path >= path })
	if i < len(m.Files) && m.Files[i].Path == path {
		return m.Files[i], true
	}
	return Entry{}, false
}

// Map indexes the entries by path.
func (m *Manifest) Map() map[string]Entry {
	out := make(map[string]Entry, len(m.Files))
	for _, e := range m.Files {
		out[e.Path] = e
	}
	return out
}

// Paths returns the sorted document paths.
func (m *Manifest) Paths() []string {
	out := make([]string, len(m.Files))
	for i, e := range m.Files {
		out[i] = e.Path
	}
	return out
}
