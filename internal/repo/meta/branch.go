package meta

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/fs"
)

// Branch is a named mutable pointer to a commit.
type Branch struct {
	Name        string `json:"name" yaml:"name"`
	Head        string `json:"head" yaml:"head"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

var branchNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateBranchName rejects names that cannot be stored as a ref file.
func ValidateBranchName(name string) error {
	if name == "HEAD" || name == "" || !branchNameRe.MatchString(name) ||
		strings.HasSuffix(name, ".lock") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid branch name %q", name)
	}
	return nil
}

// GetBranch reads a ref file.
func (mc *MetaContext) GetBranch(name string) (*Branch, error) {
	if err := ValidateBranchName(name); err != nil {
		return nil, errs.E(errs.ErrNotFound, "branch", name, err)
	}
	data, err := mc.FS.ReadFile(mc.Config.RefFile(name))
	if err != nil {
		if mc.FS.IsNotExist(err) {
			return nil, errs.E(errs.ErrNotFound, "branch", name)
		}
		return nil, fmt.Errorf("read ref %q: %w", name, err)
	}
	head, desc, _ := strings.Cut(string(data), "\n")
	return &Branch{
		Name:        name,
		Head:        strings.TrimSpace(head),
		Description: strings.TrimRight(desc, "\n"),
	}, nil
}

// BranchExists reports whether a ref file exists for name.
func (mc *MetaContext) BranchExists(name string) bool {
	if ValidateBranchName(name) != nil {
		return false
	}
	return mc.FS.Exists(mc.Config.RefFile(name))
}

func (mc *MetaContext) writeBranch(b *Branch) error {
	content := b.Head + "\n"
	if b.Description != "" {
		content += b.Description + "\n"
	}
	return fs.WriteFileAtomic(mc.FS, mc.Config.RefFile(b.Name), []byte(content), 0o644)
}

// SetBranchHead moves a branch ref, keeping its description.
func (mc *MetaContext) SetBranchHead(name, hash string) error {
	if err := ValidateBranchName(name); err != nil {
		return err
	}
	b, err := mc.GetBranch(name)
	if err != nil {
		if errs.KindOf(err) != errs.ErrNotFound {
			return err
		}
		b = &Branch{Name: name}
	}
	b.Head = hash
	return mc.writeBranch(b)
}

// CreateBranch creates name pointing at the commit from resolves to.
func (mc *MetaContext) CreateBranch(name, from, description string) (*Branch, error) {
	if err := ValidateBranchName(name); err != nil {
		return nil, err
	}
	if mc.BranchExists(name) {
		return nil, errs.E(errs.ErrAlreadyExists, "create branch", name)
	}
	hash, err := mc.ResolveRef(from)
	if err != nil {
		return nil, err
	}
	b := &Branch{Name: name, Head: hash, Description: strings.TrimSpace(description)}
	if err := mc.writeBranch(b); err != nil {
		return nil, err
	}
	mc.Log.Debug("branch created", zapBranch(name), zapCommit(hash))
	return b, nil
}

// DescribeBranch replaces the description of a branch.
func (mc *MetaContext) DescribeBranch(name, description string) error {
	b, err := mc.GetBranch(name)
	if err != nil {
		return err
	}
	b.Description = strings.TrimSpace(description)
	return mc.writeBranch(b)
}

// DeleteBranch removes the ref of name. Its commit log stays on disk.
func (mc *MetaContext) DeleteBranch(name string) error {
	h, err := mc.GetHead()
	if err != nil {
		return err
	}
	if a, ok := h.(Attached); ok && a.Branch == name {
		return errs.E(errs.ErrCannotDeleteCurrent, "delete branch", name)
	}
	if !mc.BranchExists(name) {
		return errs.E(errs.ErrNotFound, "delete branch", name)
	}
	if err := mc.FS.Remove(mc.Config.RefFile(name)); err != nil {
		return fmt.Errorf("remove ref %q: %w", name, err)
	}
	return nil
}

// ListBranches returns all branches sorted by name.
func (mc *MetaContext) ListBranches() ([]Branch, error) {
	entries, err := mc.FS.ReadDir(mc.Config.RefsDir())
	if err != nil {
		if mc.FS.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read refs: %w", err)
	}
	var out []Branch
	for _, e := range entries {
		if e.IsDir() || fs.IsTemp(e.Name()) || ValidateBranchName(e.Name()) != nil {
			continue
		}
		b, err := mc.GetBranch(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// BranchesAt returns the names of branches whose head is hash.
func (mc *MetaContext) BranchesAt(hash string) ([]string, error) {
	branches, err := mc.ListBranches()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, b := range branches {
		if b.Head == hash {
			names = append(names, b.Name)
		}
	}
	return names, nil
}
