//go:build !unix

package lock

import (
	"errors"
	"fmt"
	"os"
)

// Without flock the lock is an exclusively created sidecar file.
func tryLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path+".held", os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}
	return f, nil
}

func unlock(f *os.File) error {
	return os.Remove(f.Name())
}
