package watch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/repo"
	"github.com/keshon/kvc/internal/repo/diff"
	"github.com/keshon/kvc/internal/repo/meta"
)

// Result is what AutoCommit did with one batch.
type Result struct {
	Batch   Batch
	Changes diff.ChangeSet
	Commit  *meta.Commit // nil unless a commit was recorded
}

// AutoCommit turns batches into commits, or only reports them when Commit is
// off.
type AutoCommit struct {
	Repo   *repo.Repository
	Author meta.Author
	Commit bool
	Log    *zap.Logger
	// Report is called for every batch that left the tree different from HEAD.
	Report func(Result)
}

// Handle is a Handler.
func (a *AutoCommit) Handle(ctx context.Context, b Batch) error {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}

	cs, err := a.Repo.DiffWorking("")
	if err != nil {
		return err
	}
	if cs.Empty() {
		log.Debug("batch left the tree unchanged", zap.Int("paths", len(b.Paths)))
		return nil
	}

	res := Result{Batch: b, Changes: cs}
	if a.Commit {
		c, err := a.Repo.Commit(ctx, repo.CommitOptions{
			Message: Message(cs, a.Repo.Tree.Tracked),
			Author:  a.Author,
		})
		switch {
		case errors.Is(err, errs.ErrVaultLocked), errors.Is(err, errs.ErrDirtyState):
			// retried with the next batch
			log.Warn("auto-commit skipped", zap.Error(err))
		case err != nil:
			return err
		default:
			res.Commit = c
		}
	}
	if a.Report != nil {
		a.Report(res)
	}
	return nil
}

// Message describes a change set in one line.
func Message(cs diff.ChangeSet, tracked string) string {
	msg := fmt.Sprintf("Auto-commit: %d files changed", cs.Len())
	if doms := cs.Domains(tracked); len(doms) > 0 {
		msg += " (" + strings.Join(doms, ", ") + ")"
	}
	return msg
}
