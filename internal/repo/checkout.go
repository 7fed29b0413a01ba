package repo

import (
	"context"
	"errors"
	"path"

	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/repo/store/snapshot"
)

var errDirtyHint = errors.New("uncommitted changes in tracked documents; commit them or use --force")

// CheckoutResult reports a finished checkout.
type CheckoutResult struct {
	Head     meta.Head
	Commit   *meta.Commit
	Restored snapshot.RestoreStats
}

// Checkout moves HEAD to target and restores its tree. Uncommitted tracked
// changes fail with errs.ErrDirtyState unless force is set. The loaded set
// of the context index is reset to the domains the commit touched.
func (r *Repository) Checkout(ctx context.Context, target string, force bool) (*CheckoutResult, error) {
	var res *CheckoutResult
	err := r.WithLock(ctx, "checkout", func() error {
		head, hash, err := r.Meta.ResolveCheckout(target)
		if err != nil {
			return err
		}
		if !force {
			dirty, err := r.IsDirty()
			if err != nil {
				return err
			}
			if dirty {
				return errs.E(errs.ErrDirtyState, "checkout", target,
					errDirtyHint).WithHead(r.Meta.DescribeHead())
			}
		}

		c, err := r.Meta.GetCommit(hash)
		if err != nil {
			return err
		}
		stats, err := r.Snapshots.Restore(c.Snapshot, r.Tree)
		if err != nil {
			return err
		}
		if err := r.Meta.SetHead(head); err != nil {
			return err
		}
		if err := r.resetLoaded(c); err != nil {
			r.Log.Warn("reset context index", zap.Error(err))
		}
		res = &CheckoutResult{Head: head, Commit: c, Restored: stats}
		return nil
	})
	return res, err
}

func (r *Repository) resetLoaded(c *meta.Commit) error {
	ix, err := r.Index()
	if err != nil {
		return err
	}
	var loaded []string
	for _, d := range c.Summary.DomainsTouched {
		if d == "" {
			continue
		}
		loaded = append(loaded, path.Join(r.Tree.Tracked, d))
	}
	ix.ResetLoaded(loaded)
	return ix.Save()
}

// RewindMode selects what Rewind moves.
type RewindMode int

const (
	// Soft moves only the ref; the working tree is left alone.
	Soft RewindMode = iota
	// Hard also restores the working tree.
	Hard
)

func (m RewindMode) String() string {
	if m == Hard {
		return "hard"
	}
	return "soft"
}

// Rewind points HEAD's target at ref. Later commits stay in their logs and
// remain reachable by hash.
func (r *Repository) Rewind(ctx context.Context, ref string, mode RewindMode) (*meta.Commit, error) {
	var out *meta.Commit
	err := r.WithLock(ctx, "rewind", func() error {
		hash, err := r.Meta.ResolveRef(ref)
		if err != nil {
			return err
		}
		c, err := r.Meta.GetCommit(hash)
		if err != nil {
			return err
		}
		if mode == Hard {
			if _, err := r.Snapshots.Restore(c.Snapshot, r.Tree); err != nil {
				return err
			}
		}
		if err := r.Meta.MoveHead(hash); err != nil {
			return err
		}
		r.Log.Debug("rewound", zap.String("to", c.Short()), zap.Stringer("mode", mode))
		out = c
		return nil
	})
	return out, err
}
