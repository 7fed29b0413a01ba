package repo

import (
	"context"

	"github.com/keshon/kvc/internal/repo/meta"
)

// CreateBranch creates name at from (HEAD when empty).
func (r *Repository) CreateBranch(ctx context.Context, name, from, description string) (*meta.Branch, error) {
	if from == "" {
		from = "HEAD"
	}
	var b *meta.Branch
	err := r.WithLock(ctx, "create branch", func() error {
		var err error
		b, err = r.Meta.CreateBranch(name, from, description)
		return err
	})
	return b, err
}

// DeleteBranch removes a branch ref.
func (r *Repository) DeleteBranch(ctx context.Context, name string) error {
	return r.WithLock(ctx, "delete branch", func() error {
		return r.Meta.DeleteBranch(name)
	})
}

// DescribeBranch sets a branch description.
func (r *Repository) DescribeBranch(ctx context.Context, name, description string) error {
	return r.WithLock(ctx, "describe branch", func() error {
		return r.Meta.DescribeBranch(name, description)
	})
}

// CurrentBranch returns the attached branch name, or "" when detached.
func (r *Repository) CurrentBranch() (string, error) {
	h, err := r.Meta.GetHead()
	if err != nil {
		return "", err
	}
	if a, ok := h.(meta.Attached); ok {
		return a.Branch, nil
	}
	return "", nil
}
