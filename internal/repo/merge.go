package repo

import (
	"context"
	"fmt"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/repo/merge"
)

// Merge merges source into target (the attached branch when empty). When
// target is checked out its working tree must be clean, and it is restored
// to the merge result afterwards.
func (r *Repository) Merge(ctx context.Context, source, target string, opts ...merge.Option) (*merge.Result, error) {
	var res *merge.Result
	err := r.WithLock(ctx, "merge", func() error {
		current, err := r.CurrentBranch()
		if err != nil {
			return err
		}
		if target == "" {
			if current == "" {
				return errs.E(errs.ErrDirtyState, "merge", source,
					fmt.Errorf("HEAD is detached; name a target branch")).WithHead(r.Meta.DescribeHead())
			}
			target = current
		}
		checkedOut := target == current
		if checkedOut {
			dirty, err := r.IsDirty()
			if err != nil {
				return err
			}
			if dirty {
				return errs.E(errs.ErrDirtyState, "merge", target, errDirtyHint).WithHead(r.Meta.DescribeHead())
			}
		}

		res, err = r.Merger.Merge(source, target, opts...)
		if err != nil {
			return err
		}
		if checkedOut && !res.NoOp {
			if _, err := r.Snapshots.Restore(res.Commit.Snapshot, r.Tree); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}
