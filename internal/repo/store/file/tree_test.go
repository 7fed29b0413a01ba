package file_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/repo/store/file"
)

func newTree(t *testing.T) *file.Tree {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".kvc", "objects"), 0o755))
	return file.NewTree(root, "domains", fs.NewOSFS())
}

func TestScanSkipsMetaAndIgnored(t *testing.T) {
	tr := newTree(t)
	require.NoError(t, tr.Write("domains/b/two.md", []byte("2")))
	require.NoError(t, tr.Write("domains/a/one.md", []byte("1")))
	require.NoError(t, tr.Write("domains/top.md", []byte("t")))
	require.NoError(t, tr.Write("outside.md", []byte("o")))
	require.NoError(t, os.WriteFile(filepath.Join(tr.Root, ".kvcignore"), []byte("*.bak\n"), 0o644))
	tr = file.NewTree(tr.Root, "domains", fs.NewOSFS())
	require.NoError(t, tr.Write("domains/a/one.bak", []byte("x")))

	paths, err := tr.Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/a/one.md", "domains/b/two.md", "domains/top.md"}, paths)
}

func TestScanWholeVault(t *testing.T) {
	root := t.TempDir()
	tr := file.NewTree(root, ".", fs.NewOSFS())
	require.NoError(t, tr.Write("a.md", []byte("X")))
	require.NoError(t, tr.Write(".kvc/HEAD", []byte("ref")))

	paths, err := tr.Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, paths)
	assert.True(t, tr.Contains("a.md"))
	assert.False(t, tr.Contains(".kvc/HEAD"))
}

func TestRemovePrunesEmptyDirs(t *testing.T) {
	tr := newTree(t)
	require.NoError(t, tr.Write("domains/x/deep/a.md", []byte("a")))

	require.NoError(t, tr.Remove("domains/x/deep/a.md"))
	assert.False(t, tr.Exists("domains/x/deep"))
	assert.False(t, tr.Exists("domains/x"))
	assert.True(t, tr.Exists("domains"))
}

func TestReadLargeDocumentMapped(t *testing.T) {
	tr := newTree(t)
	big := bytes.Repeat([]byte("k"), file.MmapThreshold+10)
	require.NoError(t, tr.Write("domains/big.md", big))

	got, err := tr.Read("domains/big.md")
	require.NoError(t, err)
	assert.Equal(t, len(big), len(got))
}

func TestDomainAndRel(t *testing.T) {
	tr := newTree(t)
	assert.Equal(t, "research", tr.Domain("domains/research/a.md"))
	assert.Equal(t, "", tr.Domain("domains/a.md"))
	assert.Equal(t, "notes", file.DomainOf(".", "notes/a.md"))

	rel, err := tr.Rel(filepath.Join(tr.Root, "domains", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "domains/a.md", rel)

	_, err = tr.Rel("../escape.md")
	assert.Error(t, err)
}
