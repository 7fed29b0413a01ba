package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kvc/internal/fs"
)

func TestOSFSOpenGoesThroughHook(t *testing.T) {
	var got string
	defer fs.SetHooks(fs.Hooks{Open: func(path string) (*os.File, error) {
		got = path
		return nil, errors.New("open-error")
	}})()

	rc, err := fs.NewOSFS().Open("abc.md")
	assert.Nil(t, rc)
	assert.EqualError(t, err, "open-error")
	assert.Equal(t, "abc.md", got)
}

func TestOSFSRenameGoesThroughHook(t *testing.T) {
	var gotOld, gotNew string
	defer fs.SetHooks(fs.Hooks{Rename: func(oldPath, newPath string) error {
		gotOld, gotNew = oldPath, newPath
		return nil
	}})()

	require.NoError(t, fs.NewOSFS().Rename("a", "b"))
	assert.Equal(t, "a", gotOld)
	assert.Equal(t, "b", gotNew)
}

func TestOSFSCreateTempFileFailure(t *testing.T) {
	defer fs.SetHooks(fs.Hooks{CreateTemp: func(dir, pattern string) (*os.File, error) {
		assert.Equal(t, "tmp", dir)
		assert.Equal(t, "x*", pattern)
		return nil, errors.New("tmp-fail")
	}})()

	f, err := fs.NewOSFS().CreateTempFile("tmp", "x*")
	assert.Nil(t, f)
	assert.EqualError(t, err, "tmp-fail")
}

func TestSetHooksRestores(t *testing.T) {
	errFake := errors.New("nope")
	restore := fs.SetHooks(fs.Hooks{IsNotExist: func(err error) bool { return err == errFake }})
	assert.True(t, fs.NewOSFS().IsNotExist(errFake))

	restore()
	assert.False(t, fs.NewOSFS().IsNotExist(errFake))
	assert.True(t, fs.NewOSFS().IsNotExist(os.ErrNotExist))
}

func TestOSFSExistsAndIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "x.md")
	require.NoError(t, os.WriteFile(file, []byte("1"), 0o644))

	osfs := fs.NewOSFS()
	assert.True(t, osfs.IsDir(dir))
	assert.False(t, osfs.IsDir(file))
	assert.True(t, osfs.Exists(file))
	assert.False(t, osfs.Exists(filepath.Join(dir, "missing")))
}
