// Package repo is the vault handle: it wires the object store, snapshot
// engine, commit graph, merge engine and context index of one vault and
// serialises mutations behind the vault lock.
package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/config"
	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/hashing"
	"github.com/keshon/kvc/internal/lock"
	"github.com/keshon/kvc/internal/repo/index"
	"github.com/keshon/kvc/internal/repo/merge"
	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/repo/store/file"
	"github.com/keshon/kvc/internal/repo/store/object"
	"github.com/keshon/kvc/internal/repo/store/snapshot"
)

// Repository is an open vault.
type Repository struct {
	Config    *config.VaultConfig
	FS        fs.FS
	Log       *zap.Logger
	Meta      *meta.MetaContext
	Objects   *object.Store
	Tree      *file.Tree
	Snapshots *snapshot.Engine
	Merger    *merge.Engine

	// mu serialises lock holders within one process; the file lock only
	// excludes other processes.
	mu   sync.Mutex
	lock *lock.FileLock
}

// InitOptions configures a new vault.
type InitOptions struct {
	Name       string
	Hash       string
	TrackedDir string
	Author     meta.Author
	Log        *zap.Logger
}

// InitAt creates a vault at path with a root commit on the default branch
// capturing whatever the tracked directory already holds.
func InitAt(ctx context.Context, path string, opts InitOptions) (*Repository, error) {
	osfs := fs.NewOSFS()
	cfg := config.NewVaultConfig(path)
	if meta.IsMetaExists(cfg, osfs) {
		return nil, errs.E(errs.ErrAlreadyExists, "init", cfg.MetaDir())
	}

	s := config.Defaults()
	if opts.Name != "" {
		s.Core.VaultName = opts.Name
	}
	if opts.Hash != "" {
		if _, err := hashing.Lookup(opts.Hash); err != nil {
			return nil, err
		}
		s.Core.Hash = opts.Hash
	}
	if opts.TrackedDir != "" {
		s.Core.TrackedDir = opts.TrackedDir
	}
	s.Core.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	cfg.Settings = s

	if err := meta.CreateLayout(cfg, osfs); err != nil {
		return nil, err
	}
	if err := osfs.MkdirAll(cfg.TrackedDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create tracked dir: %w", err)
	}
	if err := config.WriteSettings(osfs, cfg.ConfigFile(), s); err != nil {
		return nil, err
	}
	if err := fs.WriteFileAtomic(osfs, cfg.HeadFile(), []byte("ref: refs/heads/"+s.Core.DefaultBranch+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write HEAD: %w", err)
	}

	r, err := open(cfg, osfs, opts.Log)
	if err != nil {
		return nil, err
	}

	author := opts.Author
	if author == nil {
		author = meta.Human{}
	}
	name := s.Core.VaultName
	if name == "" {
		name = "vault"
	}
	_, err = r.Commit(ctx, CommitOptions{
		Message:    "Initialize vault " + name,
		Author:     author,
		AllowEmpty: true,
	})
	if err != nil {
		return nil, fmt.Errorf("root commit: %w", err)
	}
	return r, nil
}

// OpenAt opens the vault rooted at path.
func OpenAt(path string, log *zap.Logger) (*Repository, error) {
	osfs := fs.NewOSFS()
	cfg := config.NewVaultConfig(path)
	if !meta.IsMetaExists(cfg, osfs) {
		return nil, errs.E(errs.ErrNotFound, "open vault", path,
			fmt.Errorf("missing %s", cfg.HeadFile()))
	}
	s, err := config.LoadSettings(cfg.ConfigFile())
	if err != nil {
		return nil, err
	}
	cfg.Settings = s
	return open(cfg, osfs, log)
}

// Open finds the vault containing start (the working directory when empty)
// and opens it.
func Open(start string, log *zap.Logger) (*Repository, error) {
	root, err := config.ResolveVaultRoot(start)
	if err != nil {
		return nil, err
	}
	return OpenAt(root, log)
}

func open(cfg *config.VaultConfig, fsys fs.FS, log *zap.Logger) (*Repository, error) {
	if log == nil {
		log = zap.NewNop()
	}
	hash, err := hashing.Lookup(cfg.Settings.Core.Hash)
	if err != nil {
		return nil, err
	}
	mc, err := meta.NewMeta(cfg, fsys, hash, log.Named("meta"))
	if err != nil {
		return nil, err
	}
	objects := object.New(cfg.ObjectsDir(), fsys, hash, log.Named("objects"))
	tree := file.NewTree(cfg.Root, cfg.Settings.Core.TrackedDir, fsys)
	snaps := snapshot.New(objects, tree, cfg.Settings.Context.CompressSnapshots, log.Named("snapshot"))

	return &Repository{
		Config:    cfg,
		FS:        fsys,
		Log:       log,
		Meta:      mc,
		Objects:   objects,
		Tree:      tree,
		Snapshots: snaps,
		Merger:    merge.New(mc, snaps, tree.Tracked, log.Named("merge")),
		lock:      lock.New(cfg.LockFile(), log.Named("lock")),
	}, nil
}

// Settings returns the effective vault settings.
func (r *Repository) Settings() *config.Settings { return r.Config.Settings }

// WithLock runs fn while holding the vault lock. Temp files left behind by
// interrupted writers are cleaned before fn runs.
func (r *Repository) WithLock(ctx context.Context, op string, fn func() error) error {
	return r.withLock(ctx, op, true, fn)
}

func (r *Repository) withLock(ctx context.Context, op string, clean bool, fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lock.Acquire(ctx, r.Settings().Core.LockWait()); err != nil {
		return errs.E(op, err).WithHead(r.Meta.DescribeHead())
	}
	defer func() {
		if err := r.lock.Release(); err != nil {
			r.Log.Warn("release lock", zap.Error(err))
		}
	}()
	r.Meta.Reload()

	if clean {
		if n, err := r.cleanupTemp(); err != nil {
			r.Log.Debug("temp cleanup failed", zap.Error(err))
		} else if n > 0 {
			r.Log.Debug("removed stale temp files", zap.Int("count", n))
		}
	}
	return fn()
}

func (r *Repository) cleanupTemp() (int, error) {
	total, err := r.Objects.CleanupTemp()
	if err != nil {
		return total, err
	}
	for _, dir := range []string{r.Config.MetaDir(), r.Config.RefsDir(), r.Config.CommitsDir()} {
		n, err := fs.RemoveStaleTemp(r.FS, dir, object.StaleTempAge)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Index opens the context index with the vault settings applied.
func (r *Repository) Index() (*index.Index, error) {
	return index.Open(r.FS, r.Config.IndexFile(), r.Settings())
}

// UpdateIndex applies fn to the index under the lock and saves it.
func (r *Repository) UpdateIndex(ctx context.Context, fn func(ix *index.Index) error) error {
	return r.WithLock(ctx, "update index", func() error {
		ix, err := r.Index()
		if err != nil {
			return err
		}
		if err := fn(ix); err != nil {
			return err
		}
		return ix.Save()
	})
}

// ActiveSet resolves the active context against the working tree.
func (r *Repository) ActiveSet() (*index.Active, error) {
	ix, err := r.Index()
	if err != nil {
		return nil, err
	}
	paths, err := r.Tree.Scan()
	if err != nil {
		return nil, err
	}
	return ix.ActiveSet(paths, r.Tree.Size)
}
