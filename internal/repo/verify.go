package repo

import (
	"context"
	"io"
	"sort"

	"github.com/keshon/kvc/internal/repo/store/object"
	"github.com/keshon/kvc/internal/util"
)

// VerifyReport summarises an integrity check of every referenced object.
type VerifyReport struct {
	Commits      int
	Checked      int
	Problems     []object.Check
	TempsRemoved int
	// Unreadable lists snapshots whose manifest could not be decoded.
	Unreadable []string
}

// OK reports whether nothing is missing or damaged.
func (v *VerifyReport) OK() bool { return len(v.Problems) == 0 && len(v.Unreadable) == 0 }

// Referenced collects every object hash reachable from any commit log:
// snapshot manifests and the documents they list.
func (r *Repository) Referenced() (hashes []string, commits int, unreadable []string, err error) {
	all, err := r.Meta.AllCommits()
	if err != nil {
		return nil, 0, nil, err
	}
	set := make(map[string]struct{})
	for _, c := range all {
		set[c.Snapshot] = struct{}{}
		m, err := r.Snapshots.Load(c.Snapshot)
		if err != nil {
			unreadable = append(unreadable, c.Snapshot)
			continue
		}
		for _, e := range m.Files {
			set[e.Hash] = struct{}{}
		}
	}
	return util.SortedKeys(set), len(all), util.SortedSet(unreadable), nil
}

// Verify rehashes every referenced object in parallel and removes stale
// temp files. progress is called once per object.
func (r *Repository) Verify(ctx context.Context, workers int, progress func()) (*VerifyReport, error) {
	if workers < 1 {
		workers = util.WorkerCount()
	}
	hashes, commits, unreadable, err := r.Referenced()
	if err != nil {
		return nil, err
	}
	checks, err := r.Objects.VerifyAll(ctx, hashes, workers, progress)
	if err != nil {
		return nil, err
	}

	rep := &VerifyReport{Commits: commits, Checked: len(checks), Unreadable: unreadable}
	for _, c := range checks {
		if c.Status != object.OK {
			rep.Problems = append(rep.Problems, c)
		}
	}
	sort.Slice(rep.Problems, func(i, j int) bool { return rep.Problems[i].Hash < rep.Problems[j].Hash })

	err = r.withLock(ctx, "verify", false, func() error {
		n, err := r.cleanupTemp()
		rep.TempsRemoved = n
		return err
	})
	return rep, err
}

// Export writes the snapshot of ref as a tar.gz stream.
func (r *Repository) Export(ref string, w io.Writer) error {
	hash, err := r.Meta.ResolveRef(ref)
	if err != nil {
		return err
	}
	c, err := r.Meta.GetCommit(hash)
	if err != nil {
		return err
	}
	return r.Snapshots.Archive(c.Snapshot, w)
}
