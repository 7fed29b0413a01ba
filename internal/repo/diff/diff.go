// Package diff compares snapshots path by path.
package diff

import (
	"sort"

	"github.com/keshon/kvc/internal/repo/index"
	"github.com/keshon/kvc/internal/repo/store/file"
	"github.com/keshon/kvc/internal/repo/store/snapshot"
	"github.com/keshon/kvc/internal/util"
)

// Kind classifies a changed path.
type Kind int

const (
	Added Kind = iota + 1
	Removed
	Modified
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	}
	return "unknown"
}

// Symbol is the one-letter marker used in listings.
func (k Kind) Symbol() string {
	switch k {
	case Added:
		return "+"
	case Removed:
		return "-"
	case Modified:
		return "~"
	}
	return "?"
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Change is one path that differs between two snapshots.
type Change struct {
	Path       string `json:"path" yaml:"path"`
	Kind       Kind   `json:"kind" yaml:"kind"`
	OldHash    string `json:"old_hash,omitempty" yaml:"old_hash,omitempty"`
	NewHash    string `json:"new_hash,omitempty" yaml:"new_hash,omitempty"`
	OldSize    int64  `json:"old_size" yaml:"old_size"`
	NewSize    int64  `json:"new_size" yaml:"new_size"`
	TokenDelta int    `json:"token_delta" yaml:"token_delta"`
}

// ChangeSet is the ordered list of changes from A to B.
type ChangeSet struct {
	Changes []Change `json:"changes" yaml:"changes"`
}

// Manifests diffs two manifests. A nil manifest is empty.
func Manifests(a, b *snapshot.Manifest) ChangeSet {
	if a == nil {
		a = snapshot.NewManifest(nil)
	}
	if b == nil {
		b = snapshot.NewManifest(nil)
	}
	am, bm := a.Map(), b.Map()

	cs := ChangeSet{Changes: []Change{}}
	for _, e := range a.Files {
		n, ok := bm[e.Path]
		switch {
		case !ok:
			cs.Changes = append(cs.Changes, Change{
				Path: e.Path, Kind: Removed, OldHash: e.Hash, OldSize: e.Size,
				TokenDelta: -index.EstimateTokens(e.Size),
			})
		case n.Hash != e.Hash:
			cs.Changes = append(cs.Changes, Change{
				Path: e.Path, Kind: Modified,
				OldHash: e.Hash, NewHash: n.Hash, OldSize: e.Size, NewSize: n.Size,
				TokenDelta: index.EstimateTokens(n.Size) - index.EstimateTokens(e.Size),
			})
		}
	}
	for _, n := range b.Files {
		if _, ok := am[n.Path]; !ok {
			cs.Changes = append(cs.Changes, Change{
				Path: n.Path, Kind: Added, NewHash: n.Hash, NewSize: n.Size,
				TokenDelta: index.EstimateTokens(n.Size),
			})
		}
	}
	sort.Slice(cs.Changes, func(i, j int) bool { return cs.Changes[i].Path < cs.Changes[j].Path })
	return cs
}

// Empty reports whether nothing changed.
func (cs ChangeSet) Empty() bool { return len(cs.Changes) == 0 }

// Len is the number of changed paths.
func (cs ChangeSet) Len() int { return len(cs.Changes) }

// TokenDelta is the token estimate of added and modified content in B minus
// that of removed and modified content in A.
func (cs ChangeSet) TokenDelta() int {
	total := 0
	for _, c := range cs.Changes {
		total += c.TokenDelta
	}
	return total
}

// AddedTokens sums the token estimates of added and modified content in B.
func (cs ChangeSet) AddedTokens() int {
	total := 0
	for _, c := range cs.Changes {
		if c.Kind != Removed {
			total += index.EstimateTokens(c.NewSize)
		}
	}
	return total
}

// Of returns the changes of one kind.
func (cs ChangeSet) Of(k Kind) []Change {
	var out []Change
	for _, c := range cs.Changes {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Paths lists the changed paths.
func (cs ChangeSet) Paths() []string {
	out := make([]string, len(cs.Changes))
	for i, c := range cs.Changes {
		out[i] = c.Path
	}
	return out
}

// Domains lists the domains of changed paths under tracked, sorted.
func (cs ChangeSet) Domains(tracked string) []string {
	var out []string
	for _, c := range cs.Changes {
		out = append(out, file.DomainOf(tracked, c.Path))
	}
	return util.SortedSet(out)
}

// Invert returns the change set from B to A.
func (cs ChangeSet) Invert() ChangeSet {
	out := ChangeSet{Changes: make([]Change, len(cs.Changes))}
	for i, c := range cs.Changes {
		inv := Change{
			Path:       c.Path,
			OldHash:    c.NewHash,
			NewHash:    c.OldHash,
			OldSize:    c.NewSize,
			NewSize:    c.OldSize,
			TokenDelta: -c.TokenDelta,
		}
		switch c.Kind {
		case Added:
			inv.Kind = Removed
		case Removed:
			inv.Kind = Added
		default:
			inv.Kind = c.Kind
		}
		out.Changes[i] = inv
	}
	return out
}
