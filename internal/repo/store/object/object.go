// Package object is the content-addressed blob store of a vault.
//
// Objects live at <dir>/<first two hex chars>/<rest>. They are written once
// and never modified or deleted.
package object

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/hashing"
)

// Store is a write-once object store.
type Store struct {
	Dir  string
	FS   fs.FS
	Hash hashing.Func
	Log  *zap.Logger

	blobs *fs.CompressedFS
}

// New returns a store rooted at dir. A nil hash selects sha256.
func New(dir string, fsys fs.FS, hash hashing.Func, log *zap.Logger) *Store {
	if hash == nil {
		hash = hashing.Sha256
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{Dir: dir, FS: fsys, Hash: hash, Log: log, blobs: fs.NewCompressedFS(fsys)}
}

// Put stores data verbatim and returns its hash.
func (s *Store) Put(data []byte) (string, error) {
	// verbatim bytes that happen to carry the gzip magic are stored
	// compressed so Get can tell them apart
	return s.put(data, fs.IsCompressed(data))
}

// PutBlob stores document content compressed. The hash is still the hash of
// the uncompressed bytes.
func (s *Store) PutBlob(data []byte) (string, error) {
	return s.put(data, true)
}

func (s *Store) put(data []byte, compress bool) (string, error) {
	hash := s.Hash(data)
	path := s.path(hash)

	if s.FS.Exists(path) {
		return hash, nil
	}

	var err error
	if compress {
		err = s.blobs.WriteFile(path, data, 0o444)
	} else {
		err = fs.WriteFileAtomic(s.FS, path, data, 0o444)
	}
	if err != nil {
		// a concurrent writer may have published the same object
		if s.FS.Exists(path) {
			return hash, nil
		}
		return "", fmt.Errorf("store object %s: %w", hash, err)
	}

	s.Log.Debug("object stored", zap.String("hash", hash), zap.Int("size", len(data)), zap.Bool("compressed", compress))
	return hash, nil
}

// Get returns the content stored under hash.
func (s *Store) Get(hash string) ([]byte, error) {
	if !validHash(hash) {
		return nil, errs.E(errs.ErrNotFound, "get object", hash)
	}
	raw, err := s.FS.ReadFile(s.path(hash))
	if err != nil {
		if s.FS.IsNotExist(err) {
			return nil, errs.E(errs.ErrNotFound, "get object", hash)
		}
		return nil, fmt.Errorf("read object %s: %w", hash, err)
	}
	if !fs.IsCompressed(raw) {
		return raw, nil
	}
	data, err := fs.Decompress(raw)
	if err != nil {
		return nil, errs.E(errs.ErrStoreCorruption, "decompress object", hash, err)
	}
	return data, nil
}

// Has reports whether hash is present.
func (s *Store) Has(hash string) bool {
	return validHash(hash) && s.FS.Exists(s.path(hash))
}

// List returns every stored hash.
func (s *Store) List() ([]string, error) {
	shards, err := s.FS.ReadDir(s.Dir)
	if err != nil {
		if s.FS.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		entries, err := s.FS.ReadDir(filepath.Join(s.Dir, shard.Name()))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || fs.IsTemp(e.Name()) {
				continue
			}
			out = append(out, shard.Name()+e.Name())
		}
	}
	return out, nil
}

func (s *Store) path(hash string) string {
	return filepath.Join(s.Dir, hash[:2], hash[2:])
}

func validHash(h string) bool {
	if len(h) < 4 {
		return false
	}
	for _, c := range h {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
