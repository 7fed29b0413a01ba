package repo

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/repo/diff"
	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/repo/store/snapshot"
)

// CommitOptions are the caller supplied parts of a commit.
type CommitOptions struct {
	Message    string
	Author     meta.Author
	AllowEmpty bool
}

// Commit snapshots the tracked tree and records it on HEAD's target.
// Without AllowEmpty a tree identical to HEAD fails with errs.ErrDirtyState.
func (r *Repository) Commit(ctx context.Context, opts CommitOptions) (*meta.Commit, error) {
	if strings.TrimSpace(opts.Message) == "" {
		return nil, fmt.Errorf("commit: empty message")
	}
	var out *meta.Commit
	err := r.WithLock(ctx, "commit", func() error {
		var parents []string
		var prev *snapshot.Manifest
		if target, err := r.Meta.HeadTarget(); err != nil {
			return err
		} else if target != "" {
			parents = []string{target}
			if prev, err = r.manifestOf(target); err != nil {
				return err
			}
		}

		snap, err := r.Snapshots.CaptureTree()
		if err != nil {
			return err
		}
		current, err := r.Snapshots.Load(snap)
		if err != nil {
			return err
		}
		changes := diff.Manifests(prev, current)
		if changes.Empty() && !opts.AllowEmpty {
			return errs.E(errs.ErrDirtyState, "commit", "nothing to commit").WithHead(r.Meta.DescribeHead())
		}

		summary := meta.ContextSummary{
			DomainsTouched: changes.Domains(r.Tree.Tracked),
			FilesChanged:   changes.Len(),
			TokenEstimate:  changes.AddedTokens(),
		}
		if act, err := r.ActiveSet(); err == nil {
			summary.ActiveTokens = act.TotalTokens
		} else {
			r.Log.Debug("active set unavailable", zap.Error(err))
		}

		c, err := r.Meta.CreateCommit(meta.NewCommit{
			Parents:  parents,
			Author:   opts.Author,
			Message:  strings.TrimSpace(opts.Message),
			Snapshot: snap,
			Summary:  summary,
		})
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// manifestOf loads the snapshot of a commit.
func (r *Repository) manifestOf(hash string) (*snapshot.Manifest, error) {
	c, err := r.Meta.GetCommit(hash)
	if err != nil {
		return nil, err
	}
	return r.Snapshots.Load(c.Snapshot)
}

// Manifest resolves ref and loads its snapshot.
func (r *Repository) Manifest(ref string) (*meta.Commit, *snapshot.Manifest, error) {
	hash, err := r.Meta.ResolveRef(ref)
	if err != nil {
		return nil, nil, err
	}
	c, err := r.Meta.GetCommit(hash)
	if err != nil {
		return nil, nil, err
	}
	m, err := r.Snapshots.Load(c.Snapshot)
	if err != nil {
		return nil, nil, err
	}
	return c, m, nil
}
