package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/keshon/kvc/internal/errs"
)

// ResolveVaultRoot walks up from start until it finds a directory holding
// the metadata dir.
func ResolveVaultRoot(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		start = wd
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if fi, err := os.Stat(filepath.Join(dir, MetaDir)); err == nil && fi.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", errs.E(errs.ErrNotFound, "find vault", start,
		fmt.Errorf("no %s directory here or in any parent (run `kvc init`)", MetaDir))
}
