package fs

import (
	"io"
	"os"
)

// OSFS is the FS of a vault on disk. Every call goes through the package
// Hooks.
type OSFS struct{}

func NewOSFS() *OSFS {
	return &OSFS{}
}

func (*OSFS) Open(path string) (io.ReadSeekCloser, error) {
	f, err := hooks.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (*OSFS) Stat(path string) (os.FileInfo, error)        { return hooks.Stat(path) }
func (*OSFS) ReadFile(path string) ([]byte, error)         { return hooks.ReadFile(path) }
func (*OSFS) ReadDir(path string) ([]os.DirEntry, error)   { return hooks.ReadDir(path) }
func (*OSFS) MkdirAll(path string, perm os.FileMode) error { return hooks.MkdirAll(path, perm) }
func (*OSFS) Remove(path string) error                     { return hooks.Remove(path) }
func (*OSFS) Rename(oldPath, newPath string) error         { return hooks.Rename(oldPath, newPath) }
func (*OSFS) IsNotExist(err error) bool                    { return hooks.IsNotExist(err) }

func (*OSFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return hooks.WriteFile(path, data, perm)
}

// CreateTempFile creates a temp file in dir. A nil *os.File is never
// returned as a non-nil TempFile.
func (*OSFS) CreateTempFile(dir, pattern string) (TempFile, error) {
	f, err := hooks.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (*OSFS) Exists(path string) bool {
	_, err := hooks.Stat(path)
	return err == nil
}

func (*OSFS) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}

func (*OSFS) IsDir(path string) bool {
	fi, err := hooks.Stat(path)
	return err == nil && fi.IsDir()
}
