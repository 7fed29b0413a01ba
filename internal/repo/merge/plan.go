// Package merge reconciles two branches of accumulated knowledge. Documents
// changed on both sides are concatenated instead of line-merged, so no text
// is ever dropped.
package merge

import (
	"fmt"
	"sort"

	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/repo/store/snapshot"
)

// Action is what the merge does with one path.
type Action int

const (
	// Adopt takes the source version (including a source-only addition).
	Adopt Action = iota + 1
	// Concatenate appends the source text to the target text.
	Concatenate
	// Delete removes a path the source deleted and the target left alone.
	Delete
)

func (a Action) String() string {
	switch a {
	case Adopt:
		return "adopt"
	case Concatenate:
		return "concatenate"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// Step is the planned action for one path.
type Step struct {
	Path   string
	Action Action
	Target snapshot.Entry // zero when absent on the target side
	Source snapshot.Entry // zero when absent on the source side
}

// Plan lists the steps that bring source changes into target, by path.
type Plan struct {
	Steps []Step
}

// Empty reports whether the merge would not change the target tree.
func (p *Plan) Empty() bool { return len(p.Steps) == 0 }

// Paths returns the paths handled with action a.
func (p *Plan) Paths(a Action) []string {
	var out []string
	for _, s := range p.Steps {
		if s.Action == a {
			out = append(out, s.Path)
		}
	}
	return out
}

// NewPlan compares what source and target each did since base. Only paths
// the source changed produce steps; target-only changes are kept as they are.
func NewPlan(base, target, source *snapshot.Manifest) *Plan {
	bm, tm, sm := base.Map(), target.Map(), source.Map()

	paths := make(map[string]struct{})
	for p := range bm {
		paths[p] = struct{}{}
	}
	for p := range sm {
		paths[p] = struct{}{}
	}

	plan := &Plan{}
	for p := range paths {
		b, inBase := bm[p]
		t, inTarget := tm[p]
		s, inSource := sm[p]

		if same(b, inBase, s, inSource) {
			continue // source did not touch it
		}
		if same(t, inTarget, s, inSource) {
			continue // both sides already agree
		}

		step := Step{Path: p, Target: t, Source: s}
		targetUnchanged := same(b, inBase, t, inTarget)
		switch {
		case targetUnchanged && !inSource:
			step.Action = Delete
		case targetUnchanged:
			step.Action = Adopt
		case !inSource:
			continue // source deleted, target edited: keep the edit
		case !inTarget:
			step.Action = Adopt // target deleted, source edited: keep the edit
		default:
			step.Action = Concatenate
		}
		plan.Steps = append(plan.Steps, step)
	}
	sort.Slice(plan.Steps, func(i, j int) bool { return plan.Steps[i].Path < plan.Steps[j].Path })
	return plan
}

func same(a snapshot.Entry, aOK bool, b snapshot.Entry, bOK bool) bool {
	if aOK != bOK {
		return false
	}
	return !aOK || a.Hash == b.Hash
}

// Boundary separates the target text from the appended source text.
func Boundary(source, sourceHead string) string {
	return fmt.Sprintf("\n\n---\n<!-- merged from %s (%s) -->\n\n", source, meta.ShortHash(sourceHead))
}

// Concat joins target and source text around the boundary.
func Concat(target, source []byte, sourceName, sourceHead string) []byte {
	boundary := Boundary(sourceName, sourceHead)
	out := make([]byte, 0, len(target)+len(boundary)+len(source))
	out = append(out, target...)
	out = append(out, boundary...)
	out = append(out, source...)
	return out
}
