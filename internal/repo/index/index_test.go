package index_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kvc/internal/config"
	"github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/repo/index"
)

var tracked = []string{
	"domains/archive/old.md",
	"domains/proj/a.md",
	"domains/proj/b.md",
	"domains/proj/notes/c.md",
	"domains/other/d.md",
}

func sizes(p string) (int64, error) {
	return int64(len(p)) * 10, nil
}

func newIndex(t *testing.T) (*index.Index, *fs.MemoryFS) {
	t.Helper()
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("/vault/.kvc", 0o755))
	s := config.Defaults()
	s.Pins.NeverLoad = []string{"domains/archive/**"}
	ix, err := index.Open(m, "/vault/.kvc/index.json", s)
	require.NoError(t, err)
	return ix, m
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, index.EstimateTokens(0))
	assert.Equal(t, 0, index.EstimateTokens(3))
	assert.Equal(t, 1, index.EstimateTokens(4))
	assert.Equal(t, 25, index.EstimateTokens(100))
	assert.Equal(t, 0, index.EstimateTokens(-5))
	prev := 0
	for n := int64(0); n < 64; n++ {
		cur := index.EstimateTokens(n)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestLoadDirectoryAndFile(t *testing.T) {
	ix, _ := newIndex(t)
	assert.Empty(t, ix.Load([]string{"domains/proj/notes", "./domains/other/d.md"}))

	act, err := ix.ActiveSet(tracked, sizes)
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/other/d.md", "domains/proj/notes/c.md"}, act.Paths())

	var total int
	for _, e := range act.Entries {
		total += e.Tokens
	}
	assert.Equal(t, total, act.TotalTokens)
}

func TestExclusionWinsOverPinAndLoad(t *testing.T) {
	ix, _ := newIndex(t)
	ix.Load([]string{"domains/proj"})
	ix.Pin([]string{"domains/proj/a.md"})
	ix.Exclude([]string{"domains/proj/*.md"})

	act, err := ix.ActiveSet(tracked, sizes)
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/proj/notes/c.md"}, act.Paths())
	for _, p := range act.Paths() {
		assert.False(t, ix.IsExcluded(p))
	}

	ix.Include([]string{"domains/proj/*.md"})
	act, err = ix.ActiveSet(tracked, sizes)
	require.NoError(t, err)
	assert.Contains(t, act.Paths(), "domains/proj/a.md")
	for _, e := range act.Entries {
		if e.Path == "domains/proj/a.md" {
			assert.True(t, e.Pinned)
		}
	}
}

func TestLoadExcludedReturnsWarning(t *testing.T) {
	ix, _ := newIndex(t)
	warnings := ix.Load([]string{"domains/archive/old.md"})
	require.Len(t, warnings, 1)
	assert.Empty(t, ix.Loaded)

	ix.Exclude([]string{"domains/other"})
	warnings = ix.Load([]string{"domains/other/d.md", "domains/proj/a.md"})
	assert.Len(t, warnings, 1)
	assert.Equal(t, []string{"domains/proj/a.md"}, ix.Loaded)
}

func TestUnloadKeepsPins(t *testing.T) {
	ix, _ := newIndex(t)
	ix.Load([]string{"domains/proj/a.md", "domains/proj/b.md"})
	ix.Pin([]string{"domains/proj/a.md"})

	ix.Unload([]string{"domains/proj/a.md"})
	act, err := ix.ActiveSet(tracked, sizes)
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/proj/a.md", "domains/proj/b.md"}, act.Paths())

	ix.UnloadAll()
	act, err = ix.ActiveSet(tracked, sizes)
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/proj/a.md"}, act.Paths())

	ix.Unpin([]string{"domains/proj/a.md"})
	act, err = ix.ActiveSet(tracked, sizes)
	require.NoError(t, err)
	assert.Empty(t, act.Entries)
}

func TestUnpinDropsIdenticalExclude(t *testing.T) {
	ix, _ := newIndex(t)
	ix.Exclude([]string{"domains/proj/a.md", "domains/proj/b.md"})
	ix.Unpin([]string{"domains/proj/a.md"})
	assert.Equal(t, []string{"domains/proj/b.md"}, ix.Excluded)
}

func TestAlwaysLoadAndBudget(t *testing.T) {
	ix, _ := newIndex(t)
	ix.Pins.AlwaysLoad = []string{"domains/other/**"}
	ix.MaxTokens = 10

	act, err := ix.ActiveSet(tracked, sizes)
	require.NoError(t, err)
	require.Equal(t, []string{"domains/other/d.md"}, act.Paths())
	assert.True(t, act.Entries[0].Pinned)
	assert.True(t, act.OverBudget)
}

func TestMissingLiteralEntries(t *testing.T) {
	ix, _ := newIndex(t)
	ix.Load([]string{"domains/gone.md", "domains/proj/a.md"})
	act, err := ix.ActiveSet(tracked, sizes)
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/gone.md"}, act.Missing)
}

func TestSaveAndReopen(t *testing.T) {
	ix, m := newIndex(t)
	ix.Load([]string{"domains/proj/b.md", "domains/proj/a.md"})
	ix.Pin([]string{"domains/other/d.md"})
	ix.Exclude([]string{"*.tmp"})
	require.NoError(t, ix.Save())

	again, err := index.Open(m, ix.Path, config.Defaults())
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/proj/a.md", "domains/proj/b.md"}, again.Loaded)
	assert.Equal(t, []string{"domains/other/d.md"}, again.Pinned)
	assert.Equal(t, []string{"*.tmp"}, again.Excluded)
}

func TestActiveSetPropagatesSizeErrors(t *testing.T) {
	ix, _ := newIndex(t)
	ix.Load([]string{"domains/proj"})
	_, err := ix.ActiveSet(tracked, func(string) (int64, error) { return 0, fmt.Errorf("boom") })
	assert.Error(t, err)
}

func TestRenderCompress(t *testing.T) {
	act := &index.Active{Entries: []index.Entry{{Path: "domains/a.md"}}}
	var buf bytes.Buffer
	err := index.Render(&buf, act, func(string) ([]byte, error) {
		return []byte("line   \n\n\n\n\nend"), nil
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "\n# File: domains/a.md\n\nline\n\nend\n\n", buf.String())
}
