package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TempPrefix marks files that are still being written.
const TempPrefix = ".tmp-"

// WriteFileAtomic writes data to a temp file in the destination directory,
// syncs it and renames it over path. Readers see either the old or the
// new content, never a partial write.
func WriteFileAtomic(fsys FS, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %q: %w", dir, err)
	}

	tmp, err := fsys.CreateTempFile(dir, TempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp in %q: %w", dir, err)
	}
	tmpPath := tmp.Name()
	published := false
	defer func() {
		if !published {
			_ = fsys.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp %q: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp %q: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp %q: %w", tmpPath, err)
	}
	if perm != 0 {
		if c, ok := fsys.(interface {
			Chmod(string, os.FileMode) error
		}); ok {
			_ = c.Chmod(tmpPath, perm)
		}
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("publish %q: %w", path, err)
	}
	published = true
	return nil
}

// IsTemp reports whether name was produced by WriteFileAtomic.
func IsTemp(name string) bool {
	return strings.HasPrefix(filepath.Base(name), TempPrefix)
}

// RemoveStaleTemp deletes temp files directly under dir that are older than
// minAge. Files of writers still in flight are younger and survive.
func RemoveStaleTemp(fsys FS, dir string, minAge time.Duration) (int, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if fsys.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !IsTemp(e.Name()) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		fi, err := fsys.Stat(p)
		if err != nil {
			continue
		}
		if !fi.ModTime().IsZero() && time.Since(fi.ModTime()) < minAge {
			continue
		}
		if err := fsys.Remove(p); err == nil {
			removed++
		}
	}
	return removed, nil
}
