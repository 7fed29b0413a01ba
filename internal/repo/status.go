package repo

import (
	"github.com/keshon/kvc/internal/repo/diff"
	"github.com/keshon/kvc/internal/repo/index"
	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/repo/store/snapshot"
)

// Status is the state of the vault relative to HEAD.
type Status struct {
	Head    meta.Head
	Commit  *meta.Commit // nil before the first commit
	Changes diff.ChangeSet
	Active  *index.Active
}

// Dirty reports whether tracked documents differ from HEAD.
func (s *Status) Dirty() bool { return !s.Changes.Empty() }

// Status compares the working tree with HEAD. It takes no lock.
func (r *Repository) Status() (*Status, error) {
	head, err := r.Meta.GetHead()
	if err != nil {
		return nil, err
	}
	st := &Status{Head: head}

	changes, c, err := r.workingChanges("")
	if err != nil {
		return nil, err
	}
	st.Commit = c
	st.Changes = changes

	if st.Active, err = r.ActiveSet(); err != nil {
		return nil, err
	}
	return st, nil
}

// workingChanges diffs ref (HEAD when empty) against the working tree.
func (r *Repository) workingChanges(ref string) (diff.ChangeSet, *meta.Commit, error) {
	if ref == "" {
		ref = "HEAD"
	}
	var base *snapshot.Manifest
	var c *meta.Commit
	target, err := r.Meta.HeadTarget()
	if err != nil {
		return diff.ChangeSet{}, nil, err
	}
	if ref != "HEAD" || target != "" {
		if c, base, err = r.Manifest(ref); err != nil {
			return diff.ChangeSet{}, nil, err
		}
	}
	working, err := r.Snapshots.Working()
	if err != nil {
		return diff.ChangeSet{}, nil, err
	}
	return diff.Manifests(base, working), c, nil
}

// IsDirty reports uncommitted tracked changes.
func (r *Repository) IsDirty() (bool, error) {
	changes, _, err := r.workingChanges("")
	if err != nil {
		return false, err
	}
	return !changes.Empty(), nil
}

// DiffRefs diffs two commits.
func (r *Repository) DiffRefs(a, b string) (diff.ChangeSet, error) {
	_, ma, err := r.Manifest(a)
	if err != nil {
		return diff.ChangeSet{}, err
	}
	_, mb, err := r.Manifest(b)
	if err != nil {
		return diff.ChangeSet{}, err
	}
	return diff.Manifests(ma, mb), nil
}

// DiffWorking diffs ref (HEAD when empty) against the working tree.
func (r *Repository) DiffWorking(ref string) (diff.ChangeSet, error) {
	cs, _, err := r.workingChanges(ref)
	return cs, err
}

// Patch renders the unified diff of one change. With working set the new
// side is read from the working tree.
func (r *Repository) Patch(c diff.Change, working bool) (string, error) {
	oldText, err := r.contentAt(c.Path, c.OldHash)
	if err != nil {
		return "", err
	}
	var newText string
	if working {
		if c.Kind != diff.Removed {
			data, err := r.Tree.Read(c.Path)
			if err != nil {
				return "", err
			}
			newText = string(data)
		}
	} else if newText, err = r.contentAt(c.Path, c.NewHash); err != nil {
		return "", err
	}
	return diff.Patch(c, oldText, newText)
}

func (r *Repository) contentAt(path, hash string) (string, error) {
	if hash == "" {
		return "", nil
	}
	data, err := r.Snapshots.Content(snapshot.Entry{Path: path, Hash: hash})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
