package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kvc/internal/repo"
	"github.com/keshon/kvc/internal/repo/diff"
	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/watch"
)

func newVault(t *testing.T) (*repo.Repository, string) {
	t.Helper()
	root := t.TempDir()
	r, err := repo.InitAt(context.Background(), root, repo.InitOptions{Name: "w", Author: meta.Human{Name: "tester"}})
	require.NoError(t, err)
	return r, root
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestAutoCommitHandle(t *testing.T) {
	r, root := newVault(t)
	write(t, root, "domains/auth/notes.md", "retry with backoff")

	var got []watch.Result
	ac := &watch.AutoCommit{
		Repo:   r,
		Author: meta.Agent{Model: "watcher"},
		Commit: true,
		Report: func(res watch.Result) { got = append(got, res) },
	}
	require.NoError(t, ac.Handle(context.Background(), watch.Batch{Paths: []string{"domains/auth/notes.md"}}))

	require.Len(t, got, 1)
	require.NotNil(t, got[0].Commit)
	assert.Equal(t, "Auto-commit: 1 files changed (auth)", got[0].Commit.Message)
	assert.Equal(t, meta.Agent{Model: "watcher"}, got[0].Commit.Author)

	head, err := r.Meta.HeadCommit()
	require.NoError(t, err)
	assert.Equal(t, got[0].Commit.Hash, head.Hash)

	// nothing left to commit: no report
	require.NoError(t, ac.Handle(context.Background(), watch.Batch{}))
	assert.Len(t, got, 1)
}

func TestAutoCommitReportOnly(t *testing.T) {
	r, root := newVault(t)
	write(t, root, "domains/a/x.md", "x")

	var got []watch.Result
	ac := &watch.AutoCommit{Repo: r, Report: func(res watch.Result) { got = append(got, res) }}
	require.NoError(t, ac.Handle(context.Background(), watch.Batch{}))

	require.Len(t, got, 1)
	assert.Nil(t, got[0].Commit)
	assert.Equal(t, []string{"domains/a/x.md"}, got[0].Changes.Paths())
	assert.Equal(t, diff.Added, got[0].Changes.Changes[0].Kind)

	dirty, err := r.IsDirty()
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestWatcherDeliversDebouncedBatch(t *testing.T) {
	r, root := newVault(t)

	w, err := watch.New(r.Tree, 50*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan watch.Batch, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, b watch.Batch) error {
			batches <- b
			return nil
		})
	}()

	write(t, root, "domains/top.md", "one")
	write(t, root, "domains/top.md", "two")
	write(t, root, ".kvc/ignored", "meta")

	select {
	case b := <-batches:
		assert.Contains(t, b.Paths, "domains/top.md")
		for _, p := range b.Paths {
			assert.NotContains(t, p, ".kvc")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestMessage(t *testing.T) {
	cs := diff.ChangeSet{Changes: []diff.Change{
		{Path: "domains/b/1.md", Kind: diff.Added},
		{Path: "domains/a/2.md", Kind: diff.Modified},
		{Path: "domains/top.md", Kind: diff.Removed},
	}}
	assert.Equal(t, "Auto-commit: 3 files changed (a, b)", watch.Message(cs, "domains"))
}
