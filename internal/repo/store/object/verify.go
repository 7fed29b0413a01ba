package object

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/util"
)

// Status of a stored object.
type Status int

const (
	OK Status = iota
	Missing
	Damaged
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Missing:
		return "missing"
	case Damaged:
		return "damaged"
	}
	return "unknown"
}

// Check is the verification result for one hash.
type Check struct {
	Hash   string
	Status Status
}

// Verify re-reads hash and compares the recomputed digest.
func (s *Store) Verify(hash string) (Status, error) {
	if !s.Has(hash) {
		return Missing, nil
	}
	data, err := s.Get(hash)
	if err != nil {
		return Damaged, err
	}
	if s.Hash(data) != hash {
		return Damaged, nil
	}
	return OK, nil
}

// VerifyAll checks hashes concurrently and returns the results sorted by
// hash. progress, if set, is called once per checked object.
func (s *Store) VerifyAll(ctx context.Context, hashes []string, workers int, progress func()) ([]Check, error) {
	var mu sync.Mutex
	out := make([]Check, 0, len(hashes))

	err := util.Parallel(ctx, hashes, workers, func(_ context.Context, h string) error {
		st, _ := s.Verify(h)
		mu.Lock()
		out = append(out, Check{Hash: h, Status: st})
		mu.Unlock()
		if progress != nil {
			progress()
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Hash < out[j].Hash })
	return out, err
}

// StaleTempAge is how old an unpublished temp file must be before cleanup
// removes it.
const StaleTempAge = time.Minute

// CleanupTemp removes temp files left by interrupted writers.
func (s *Store) CleanupTemp() (int, error) {
	total, err := fs.RemoveStaleTemp(s.FS, s.Dir, StaleTempAge)
	if err != nil {
		return 0, err
	}
	shards, err := s.FS.ReadDir(s.Dir)
	if err != nil {
		if s.FS.IsNotExist(err) {
			return total, nil
		}
		return total, err
	}
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		n, err := fs.RemoveStaleTemp(s.FS, filepath.Join(s.Dir, shard.Name()), StaleTempAge)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
