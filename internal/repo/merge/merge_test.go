package merge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kvc/internal/config"
	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/hashing"
	"github.com/keshon/kvc/internal/repo/merge"
	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/repo/store/object"
	"github.com/keshon/kvc/internal/repo/store/snapshot"
)

type fixture struct {
	t    *testing.T
	mc   *meta.MetaContext
	snap *snapshot.Engine
	eng  *merge.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := fs.NewMemoryFS()
	cfg := config.NewVaultConfig("/vault")
	require.NoError(t, meta.CreateLayout(cfg, m))
	mc, err := meta.NewMeta(cfg, m, hashing.Sha256, nil)
	require.NoError(t, err)
	clock := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mc.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	require.NoError(t, mc.SetHead(meta.Attached{Branch: "main"}))

	objects := object.New(cfg.ObjectsDir(), m, hashing.Sha256, nil)
	snap := snapshot.New(objects, nil, true, nil)
	return &fixture{t: t, mc: mc, snap: snap, eng: merge.New(mc, snap, "domains", nil)}
}

func (f *fixture) commit(branch, msg string, files map[string]string) *meta.Commit {
	f.t.Helper()
	var entries []snapshot.Entry
	for p, content := range files {
		e, err := f.snap.PutDocument(p, []byte(content))
		require.NoError(f.t, err)
		entries = append(entries, e)
	}
	h, err := f.snap.Store(snapshot.NewManifest(entries))
	require.NoError(f.t, err)

	var parents []string
	if b, err := f.mc.GetBranch(branch); err == nil {
		parents = []string{b.Head}
	}
	c, err := f.mc.CreateCommitOn(branch, meta.NewCommit{
		Parents: parents, Author: meta.Human{Name: "t"}, Message: msg, Snapshot: h,
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) tree(c *meta.Commit) map[string]string {
	f.t.Helper()
	m, err := f.snap.Load(c.Snapshot)
	require.NoError(f.t, err)
	out := map[string]string{}
	for _, e := range m.Files {
		data, err := f.snap.Content(e)
		require.NoError(f.t, err)
		out[e.Path] = string(data)
	}
	return out
}

func TestFastForwardAdoptionAndIdempotence(t *testing.T) {
	f := newFixture(t)
	f.commit("main", "init", map[string]string{"domains/p/a.md": "X"})
	_, err := f.mc.CreateBranch("feature", "main", "")
	require.NoError(t, err)
	feat := f.commit("feature", "add Y", map[string]string{"domains/p/a.md": "XY"})

	res, err := f.eng.Merge("feature", "main")
	require.NoError(t, err)
	assert.False(t, res.NoOp)
	assert.Equal(t, []string{"domains/p/a.md"}, res.Adopted)
	assert.Empty(t, res.Concatenated)
	assert.Equal(t, f.tree(feat), f.tree(res.Commit))

	mainHead, err := f.mc.GetBranch("main")
	require.NoError(t, err)
	assert.Equal(t, res.Commit.Hash, mainHead.Head)
	assert.Equal(t, meta.Agent{Model: merge.MergeModel}, res.Commit.Author)
	require.Len(t, res.Commit.Parents, 2)
	assert.Equal(t, feat.Hash, res.Commit.Parents[1])
	assert.Contains(t, res.Commit.Message, "Merge feature into main")
	assert.Equal(t, []string{"p"}, res.Commit.Summary.DomainsTouched)

	again, err := f.eng.Merge("feature", "main")
	require.NoError(t, err)
	assert.True(t, again.NoOp)
	assert.Equal(t, res.Commit.Hash, again.Commit.Hash)
}

func TestConcatenatesWhenBothSidesChanged(t *testing.T) {
	f := newFixture(t)
	f.commit("main", "init", map[string]string{"domains/p/a.md": "base"})
	_, err := f.mc.CreateBranch("feature", "main", "")
	require.NoError(t, err)
	feat := f.commit("feature", "source edit", map[string]string{"domains/p/a.md": "source"})
	f.commit("main", "target edit", map[string]string{"domains/p/a.md": "target"})

	res, err := f.eng.Merge("feature", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/p/a.md"}, res.Concatenated)

	want := "target" + merge.Boundary("feature", feat.Hash) + "source"
	assert.Equal(t, want, f.tree(res.Commit)["domains/p/a.md"])
	assert.Contains(t, want, "<!-- merged from feature ("+feat.Hash[:7]+") -->")
}

func TestDeletionRules(t *testing.T) {
	f := newFixture(t)
	f.commit("main", "init", map[string]string{
		"domains/p/drop.md":   "drop",
		"domains/p/edited.md": "edited",
		"domains/p/revive.md": "revive",
		"domains/p/same.md":   "same",
	})
	_, err := f.mc.CreateBranch("feature", "main", "")
	require.NoError(t, err)
	f.commit("feature", "source", map[string]string{
		"domains/p/revive.md": "revive v2",
		"domains/p/same.md":   "same",
		"domains/p/new.md":    "new",
	})
	f.commit("main", "target", map[string]string{
		"domains/p/drop.md":   "drop",
		"domains/p/edited.md": "edited v2",
		"domains/p/same.md":   "same",
	})

	res, err := f.eng.Merge("feature", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/p/drop.md"}, res.Removed)
	assert.Equal(t, []string{"domains/p/new.md", "domains/p/revive.md"}, res.Adopted)

	assert.Equal(t, map[string]string{
		"domains/p/edited.md": "edited v2",
		"domains/p/new.md":    "new",
		"domains/p/revive.md": "revive v2",
		"domains/p/same.md":   "same",
	}, f.tree(res.Commit))
}

func TestUnrelatedHistoriesHaveNoCommonAncestor(t *testing.T) {
	f := newFixture(t)
	f.commit("main", "init", map[string]string{"domains/a.md": "a"})
	f.commit("island", "other root", map[string]string{"domains/b.md": "b"})

	_, err := f.eng.Merge("island", "main")
	assert.ErrorIs(t, err, errs.ErrNoCommonAncestor)
}

func TestBaseAfterEarlierMerge(t *testing.T) {
	f := newFixture(t)
	f.commit("main", "init", map[string]string{"domains/a.md": "a"})
	_, err := f.mc.CreateBranch("feature", "main", "")
	require.NoError(t, err)
	f1 := f.commit("feature", "f1", map[string]string{"domains/a.md": "a1"})
	f.commit("main", "m1", map[string]string{"domains/a.md": "a", "domains/m.md": "m"})

	_, err = f.eng.Merge("feature", "main")
	require.NoError(t, err)
	f.commit("feature", "f2", map[string]string{"domains/a.md": "a1", "domains/f.md": "f"})

	mainHead, err := f.mc.GetBranch("main")
	require.NoError(t, err)
	featHead, err := f.mc.GetBranch("feature")
	require.NoError(t, err)
	base, err := merge.Base(f.mc, mainHead.Head, featHead.Head)
	require.NoError(t, err)
	assert.Equal(t, f1.Hash, base)

	res, err := f.eng.Merge("feature", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/f.md"}, res.Adopted)
	assert.Empty(t, res.Concatenated)
}

func TestPlanOnlyTouchesSourceChanges(t *testing.T) {
	m := func(files map[string]string) *snapshot.Manifest {
		var entries []snapshot.Entry
		for p, h := range files {
			entries = append(entries, snapshot.Entry{Path: p, Hash: h})
		}
		return snapshot.NewManifest(entries)
	}
	base := m(map[string]string{"a": "1", "b": "1"})
	target := m(map[string]string{"a": "2", "b": "1", "t": "1"})
	source := m(map[string]string{"a": "2", "b": "1"})

	plan := merge.NewPlan(base, target, source)
	assert.True(t, plan.Empty())
}

func TestSquashListsSourceCommits(t *testing.T) {
	f := newFixture(t)
	f.commit("main", "init", map[string]string{"domains/p/a.md": "X"})
	_, err := f.mc.CreateBranch("feature", "main", "")
	require.NoError(t, err)
	first := f.commit("feature", "draft outline\n\nlong body", map[string]string{"domains/p/a.md": "XY"})
	second := f.commit("feature", "fill sections", map[string]string{"domains/p/a.md": "XYZ"})

	res, err := f.eng.Merge("feature", "main", merge.Squash())
	require.NoError(t, err)
	assert.Equal(t, []string{second.Short() + " fill sections", first.Short() + " draft outline"}, res.Squashed)
	assert.Equal(t, "Merge feature into main (squashed)\n\n"+
		"Commits:\n  "+second.Short()+" fill sections\n  "+first.Short()+" draft outline\n\n"+
		"Adopted:\n  domains/p/a.md", res.Commit.Message)
	require.Len(t, res.Commit.Parents, 2)
	assert.Equal(t, second.Hash, res.Commit.Parents[1])
}

func TestMessageWithoutSquash(t *testing.T) {
	msg := merge.Message("feature", "main", &merge.Result{
		Adopted:      []string{"domains/p/a.md"},
		Concatenated: []string{"domains/p/b.md"},
	})
	assert.Equal(t, "Merge feature into main\n\nAdopted:\n  domains/p/a.md\n\nConcatenated:\n  domains/p/b.md", msg)
}
