package diff_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kvc/internal/repo/diff"
	"github.com/keshon/kvc/internal/repo/store/snapshot"
)

func manifest(files map[string]string) *snapshot.Manifest {
	var entries []snapshot.Entry
	for p, content := range files {
		entries = append(entries, snapshot.Entry{Path: p, Hash: "h-" + content, Size: int64(len(content))})
	}
	return snapshot.NewManifest(entries)
}

func TestManifestsClassifiesAndSorts(t *testing.T) {
	a := manifest(map[string]string{
		"domains/p/keep.md":   "same",
		"domains/p/change.md": "XXXX",
		"domains/q/gone.md":   "12345678",
	})
	b := manifest(map[string]string{
		"domains/p/keep.md":   "same",
		"domains/p/change.md": "XXXXYYYY",
		"domains/r/new.md":    "abcdefghijkl",
	})

	cs := diff.Manifests(a, b)
	require.Equal(t, []string{"domains/p/change.md", "domains/q/gone.md", "domains/r/new.md"}, cs.Paths())
	assert.Equal(t, diff.Modified, cs.Changes[0].Kind)
	assert.Equal(t, diff.Removed, cs.Changes[1].Kind)
	assert.Equal(t, diff.Added, cs.Changes[2].Kind)

	// +1 for the modification, -2 for the removal, +3 for the addition
	assert.Equal(t, 2, cs.TokenDelta())
	assert.Equal(t, 5, cs.AddedTokens())
	assert.Equal(t, []string{"p", "q", "r"}, cs.Domains("domains"))
}

func TestIdenticalManifestsHaveNoChanges(t *testing.T) {
	m := manifest(map[string]string{"domains/a.md": "x"})
	cs := diff.Manifests(m, m)
	assert.True(t, cs.Empty())
	assert.Equal(t, 0, cs.TokenDelta())

	assert.Equal(t, 1, diff.Manifests(nil, m).Len())
	assert.Equal(t, diff.Removed, diff.Manifests(m, nil).Changes[0].Kind)
}

func TestInvertIsSymmetric(t *testing.T) {
	a := manifest(map[string]string{"domains/a.md": "one", "domains/b.md": "two"})
	b := manifest(map[string]string{"domains/b.md": "two!", "domains/c.md": "three"})

	forward := diff.Manifests(a, b)
	backward := diff.Manifests(b, a)
	assert.Equal(t, backward, forward.Invert())
	assert.Equal(t, -forward.TokenDelta(), backward.TokenDelta())
	assert.Equal(t, forward, forward.Invert().Invert())
}

func TestPatch(t *testing.T) {
	c := diff.Change{Path: "domains/a.md", Kind: diff.Modified}
	out, err := diff.Patch(c, "X\n", "X\nY\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "--- a/domains/a.md\n+++ b/domains/a.md\n"))
	assert.Contains(t, out, "+Y\n")
	assert.Contains(t, out, " X\n")

	out, err = diff.Patch(diff.Change{Path: "domains/n.md", Kind: diff.Added}, "", "new\n")
	require.NoError(t, err)
	assert.Contains(t, out, "--- /dev/null")
	assert.Contains(t, out, "+new")
}

func TestKindText(t *testing.T) {
	text, err := diff.Modified.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "modified", string(text))
	assert.Equal(t, "+", diff.Added.Symbol())
}
