// Package meta is the commit and branch graph of a vault: per-branch
// append-only commit logs, branch refs and HEAD.
package meta

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/config"
	"github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/hashing"
)

// MetaContext gives access to the commit graph of one vault.
type MetaContext struct {
	Config *config.VaultConfig
	FS     fs.FS
	Hash   hashing.Func
	Now    func() time.Time
	Log    *zap.Logger

	mu      sync.Mutex
	commits map[string]*Commit // hash -> commit, filled from the logs on first use
	logOf   map[string]string  // hash -> log name
}

// NewMeta returns a MetaContext over an existing layout.
func NewMeta(cfg *config.VaultConfig, fsys fs.FS, hash hashing.Func, log *zap.Logger) (*MetaContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil VaultConfig provided")
	}
	if hash == nil {
		hash = hashing.Sha256
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MetaContext{Config: cfg, FS: fsys, Hash: hash, Now: time.Now, Log: log}, nil
}

// CreateLayout creates the metadata directories.
func CreateLayout(cfg *config.VaultConfig, fsys fs.FS) error {
	dirs := []string{
		cfg.MetaDir(),
		cfg.ObjectsDir(),
		cfg.RefsDir(),
		cfg.CommitsDir(),
	}
	for _, d := range dirs {
		if err := fsys.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("failed to create dir %q: %w", d, err)
		}
	}
	return nil
}

// IsMetaExists checks whether cfg points at an initialised vault.
func IsMetaExists(cfg *config.VaultConfig, fsys fs.FS) bool {
	fi, err := fsys.Stat(cfg.HeadFile())
	return err == nil && !fi.IsDir()
}
