package merge

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/repo/diff"
	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/repo/store/snapshot"
)

// MergeModel is the agent model recorded on merge commits.
const MergeModel = "kvc-merge"

// Graph is the part of the commit graph the merge engine reads and extends.
type Graph interface {
	GetBranch(name string) (*meta.Branch, error)
	GetCommit(hash string) (*meta.Commit, error)
	FirstParentChain(hash string, limit int) ([]*meta.Commit, error)
	Ancestors(hash string) (map[string]bool, error)
	CreateCommitOn(branch string, in meta.NewCommit) (*meta.Commit, error)
}

// Objects stores and reads document content and manifests.
type Objects interface {
	Load(hash string) (*snapshot.Manifest, error)
	Content(entry snapshot.Entry) ([]byte, error)
	PutDocument(path string, data []byte) (snapshot.Entry, error)
	Store(m *snapshot.Manifest) (string, error)
}

// Engine merges branches.
type Engine struct {
	Graph   Graph
	Objects Objects
	Tracked string // tracked dir, for the domains of the merge summary
	Log     *zap.Logger
}

// New returns a merge engine over graph and objects.
func New(graph Graph, objects Objects, tracked string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{Graph: graph, Objects: objects, Tracked: tracked, Log: log}
}

// Option adjusts a single merge.
type Option func(*options)

type options struct {
	squash bool
}

// Squash lists the source commits being brought in on the merge commit, so
// the merge reads as one change.
func Squash() Option {
	return func(o *options) { o.squash = true }
}

// Result describes a finished merge.
type Result struct {
	Commit       *meta.Commit `json:"commit" yaml:"commit"`
	Base         string       `json:"base" yaml:"base"`
	Adopted      []string     `json:"adopted" yaml:"adopted"`
	Concatenated []string     `json:"concatenated" yaml:"concatenated"`
	Removed      []string     `json:"removed" yaml:"removed"`
	// Squashed holds "<short hash> <subject>" of every source commit folded
	// into a squashed merge, newest first.
	Squashed []string `json:"squashed,omitempty" yaml:"squashed,omitempty"`
	// NoOp is set when target already contained source; Commit is then the
	// unchanged target head.
	NoOp bool `json:"no_op" yaml:"no_op"`
}

// Base returns the merge base of target and source: the newest commit on
// source's first-parent chain that target can reach.
func Base(g Graph, target, source string) (string, error) {
	reach, err := g.Ancestors(target)
	if err != nil {
		return "", err
	}
	chain, err := g.FirstParentChain(source, 0)
	if err != nil {
		return "", err
	}
	for _, c := range chain {
		if reach[c.Hash] {
			return c.Hash, nil
		}
	}
	return "", errs.E(errs.ErrNoCommonAncestor, "merge base", meta.ShortHash(target)+".."+meta.ShortHash(source))
}

// Merge brings the source branch into the target branch.
func (e *Engine) Merge(source, target string, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if source == target {
		return nil, fmt.Errorf("merge: cannot merge %q into itself", source)
	}
	sb, err := e.Graph.GetBranch(source)
	if err != nil {
		return nil, err
	}
	tb, err := e.Graph.GetBranch(target)
	if err != nil {
		return nil, err
	}
	targetHead, err := e.Graph.GetCommit(tb.Head)
	if err != nil {
		return nil, err
	}

	reach, err := e.Graph.Ancestors(tb.Head)
	if err != nil {
		return nil, err
	}
	if reach[sb.Head] {
		e.Log.Debug("merge is a no-op", zap.String("source", source), zap.String("target", target))
		return &Result{Commit: targetHead, Base: sb.Head, NoOp: true}, nil
	}

	baseHash, err := Base(e.Graph, tb.Head, sb.Head)
	if err != nil {
		return nil, err
	}
	baseCommit, err := e.Graph.GetCommit(baseHash)
	if err != nil {
		return nil, err
	}
	sourceHead, err := e.Graph.GetCommit(sb.Head)
	if err != nil {
		return nil, err
	}

	baseTree, err := e.Objects.Load(baseCommit.Snapshot)
	if err != nil {
		return nil, err
	}
	targetTree, err := e.Objects.Load(targetHead.Snapshot)
	if err != nil {
		return nil, err
	}
	sourceTree, err := e.Objects.Load(sourceHead.Snapshot)
	if err != nil {
		return nil, err
	}

	plan := NewPlan(baseTree, targetTree, sourceTree)
	if plan.Empty() {
		return &Result{Commit: targetHead, Base: baseHash, NoOp: true}, nil
	}
	merged, err := e.apply(plan, targetTree, source, sb.Head)
	if err != nil {
		return nil, err
	}
	snap, err := e.Objects.Store(merged)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Base:         baseHash,
		Adopted:      plan.Paths(Adopt),
		Concatenated: plan.Paths(Concatenate),
		Removed:      plan.Paths(Delete),
	}
	if o.squash {
		if res.Squashed, err = e.squashed(sb.Head, reach); err != nil {
			return nil, err
		}
	}
	changes := diff.Manifests(targetTree, merged)
	c, err := e.Graph.CreateCommitOn(target, meta.NewCommit{
		Parents:  []string{tb.Head, sb.Head},
		Author:   meta.Agent{Model: MergeModel},
		Message:  Message(source, target, res),
		Snapshot: snap,
		Summary: meta.ContextSummary{
			DomainsTouched: changes.Domains(e.Tracked),
			FilesChanged:   changes.Len(),
			TokenEstimate:  changes.AddedTokens(),
		},
	})
	if err != nil {
		return nil, err
	}
	res.Commit = c
	e.Log.Debug("merge committed",
		zap.String("source", source), zap.String("target", target),
		zap.Int("adopted", len(res.Adopted)), zap.Int("concatenated", len(res.Concatenated)))
	return res, nil
}

// squashed walks the first-parent chain of head until it reaches history the
// target already has.
func (e *Engine) squashed(head string, known map[string]bool) ([]string, error) {
	chain, err := e.Graph.FirstParentChain(head, 0)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range chain {
		if known[c.Hash] {
			break
		}
		subject, _, _ := strings.Cut(c.Message, "\n")
		out = append(out, c.Short()+" "+subject)
	}
	return out, nil
}

func (e *Engine) apply(plan *Plan, target *snapshot.Manifest, sourceName, sourceHead string) (*snapshot.Manifest, error) {
	files := target.Map()
	for _, s := range plan.Steps {
		switch s.Action {
		case Adopt:
			files[s.Path] = s.Source
		case Delete:
			delete(files, s.Path)
		case Concatenate:
			t, err := e.Objects.Content(s.Target)
			if err != nil {
				return nil, err
			}
			src, err := e.Objects.Content(s.Source)
			if err != nil {
				return nil, err
			}
			entry, err := e.Objects.PutDocument(s.Path, Concat(t, src, sourceName, sourceHead))
			if err != nil {
				return nil, err
			}
			files[s.Path] = entry
		}
	}
	entries := make([]snapshot.Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, f)
	}
	return snapshot.NewManifest(entries), nil
}

// Message is the commit message of a merge.
func Message(source, target string, r *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Merge %s into %s", source, target)
	if len(r.Squashed) > 0 {
		b.WriteString(" (squashed)")
	}
	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		b.WriteString("\n\n" + title + ":")
		for _, l := range lines {
			b.WriteString("\n  " + l)
		}
	}
	section("Commits", r.Squashed)
	section("Adopted", r.Adopted)
	section("Concatenated", r.Concatenated)
	return b.String()
}
