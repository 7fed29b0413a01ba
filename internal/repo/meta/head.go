package meta

import (
	"fmt"
	"strings"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/fs"
)

// Head is the state of HEAD: Attached to a branch or Detached at a commit.
type Head interface {
	fmt.Stringer
	isHead()
}

// Attached means commits advance the named branch.
type Attached struct {
	Branch string
}

// Detached means commits advance only the HEAD pointer.
type Detached struct {
	Commit string
}

func (Attached) isHead() {}
func (Detached) isHead() {}

func (a Attached) String() string { return a.Branch }
func (d Detached) String() string { return "detached at " + ShortHash(d.Commit) }

const (
	refPrefix      = "ref: refs/heads/"
	detachedPrefix = "detached: "
)

// GetHead reads the HEAD file.
func (mc *MetaContext) GetHead() (Head, error) {
	data, err := mc.FS.ReadFile(mc.Config.HeadFile())
	if err != nil {
		if mc.FS.IsNotExist(err) {
			return nil, errs.E(errs.ErrNotFound, "read HEAD", "HEAD")
		}
		return nil, fmt.Errorf("read HEAD: %w", err)
	}
	line := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(line, refPrefix):
		return Attached{Branch: strings.TrimPrefix(line, refPrefix)}, nil
	case strings.HasPrefix(line, detachedPrefix):
		return Detached{Commit: strings.TrimPrefix(line, detachedPrefix)}, nil
	default:
		return nil, fmt.Errorf("read HEAD: malformed content %q", line)
	}
}

// SetHead publishes a new HEAD atomically.
func (mc *MetaContext) SetHead(h Head) error {
	var line string
	switch v := h.(type) {
	case Attached:
		if err := ValidateBranchName(v.Branch); err != nil {
			return err
		}
		line = refPrefix + v.Branch
	case Detached:
		if v.Commit == "" {
			return fmt.Errorf("set HEAD: empty detached commit")
		}
		line = detachedPrefix + v.Commit
	default:
		return fmt.Errorf("set HEAD: unsupported head %T", h)
	}
	return fs.WriteFileAtomic(mc.FS, mc.Config.HeadFile(), []byte(line+"\n"), 0o644)
}

// HeadTarget returns the commit HEAD points at, or "" for an attached
// branch that has no commits yet.
func (mc *MetaContext) HeadTarget() (string, error) {
	h, err := mc.GetHead()
	if err != nil {
		return "", err
	}
	switch v := h.(type) {
	case Attached:
		b, err := mc.GetBranch(v.Branch)
		if err != nil {
			if errs.KindOf(err) == errs.ErrNotFound {
				return "", nil
			}
			return "", err
		}
		return b.Head, nil
	case Detached:
		return v.Commit, nil
	}
	return "", nil
}

// HeadCommit loads the commit HEAD points at.
func (mc *MetaContext) HeadCommit() (*Commit, error) {
	target, err := mc.HeadTarget()
	if err != nil {
		return nil, err
	}
	if target == "" {
		return nil, errs.E(errs.ErrNotFound, "head commit", "HEAD")
	}
	return mc.GetCommit(target)
}

// DescribeHead renders HEAD for error context.
func (mc *MetaContext) DescribeHead() string {
	h, err := mc.GetHead()
	if err != nil {
		return "unknown"
	}
	return h.String()
}

// MoveHead points HEAD's target at hash: the attached branch ref or the
// detached pointer. Nothing is removed from any commit log.
func (mc *MetaContext) MoveHead(hash string) error {
	if _, err := mc.GetCommit(hash); err != nil {
		return err
	}
	h, err := mc.GetHead()
	if err != nil {
		return err
	}
	switch v := h.(type) {
	case Attached:
		return mc.SetBranchHead(v.Branch, hash)
	case Detached:
		return mc.SetHead(Detached{Commit: hash})
	}
	return nil
}
