package meta

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/keshon/kvc/internal/errs"
)

// MinPrefix is the shortest hash prefix ResolveRef accepts.
const MinPrefix = 4

// ResolveRef turns HEAD, a branch name, a full hash or a unique hash
// prefix, optionally suffixed with ~N, into a commit hash.
func (mc *MetaContext) ResolveRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errs.E(errs.ErrNotFound, "resolve", ref)
	}

	base, steps := ref, 0
	if i := strings.LastIndex(ref, "~"); i >= 0 {
		base = ref[:i]
		n := ref[i+1:]
		if n == "" {
			steps = 1
		} else {
			v, err := strconv.Atoi(n)
			if err != nil || v < 0 {
				return "", errs.E(errs.ErrNotFound, "resolve", ref, fmt.Errorf("bad ancestor count %q", n))
			}
			steps = v
		}
	}

	hash, err := mc.resolveBase(base)
	if err != nil {
		return "", err
	}
	for i := 0; i < steps; i++ {
		c, err := mc.GetCommit(hash)
		if err != nil {
			return "", err
		}
		if c.FirstParent() == "" {
			return "", errs.E(errs.ErrNotFound, "resolve", ref, fmt.Errorf("history of %s is only %d deep", base, i))
		}
		hash = c.FirstParent()
	}
	return hash, nil
}

func (mc *MetaContext) resolveBase(base string) (string, error) {
	if base == "HEAD" {
		target, err := mc.HeadTarget()
		if err != nil {
			return "", err
		}
		if target == "" {
			return "", errs.E(errs.ErrNotFound, "resolve", base).WithHead(mc.DescribeHead())
		}
		return target, nil
	}
	if ValidateBranchName(base) == nil {
		if b, err := mc.GetBranch(base); err == nil {
			return b.Head, nil
		} else if errs.KindOf(err) != errs.ErrNotFound {
			return "", err
		}
	}
	return mc.resolveHash(base)
}

func (mc *MetaContext) resolveHash(prefix string) (string, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if _, ok, err := mc.lookup(prefix); err != nil {
		return "", err
	} else if ok {
		return prefix, nil
	}
	if len(prefix) < MinPrefix {
		return "", errs.E(errs.ErrNotFound, "resolve", prefix)
	}
	var matches []string
	for h := range mc.commits {
		if strings.HasPrefix(h, prefix) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return "", errs.E(errs.ErrNotFound, "resolve", prefix)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", errs.E(errs.ErrNotFound, "resolve", prefix,
			fmt.Errorf("ambiguous prefix matches %d commits", len(matches)))
	}
}

// ResolveCheckout decides the HEAD a checkout of target produces. A branch
// name attaches; a hash that is the head of a branch attaches to it
// (preferring the current branch); any other commit detaches.
func (mc *MetaContext) ResolveCheckout(target string) (Head, string, error) {
	if ValidateBranchName(target) == nil && mc.BranchExists(target) {
		b, err := mc.GetBranch(target)
		if err != nil {
			return nil, "", err
		}
		return Attached{Branch: b.Name}, b.Head, nil
	}

	hash, err := mc.ResolveRef(target)
	if err != nil {
		return nil, "", err
	}
	names, err := mc.BranchesAt(hash)
	if err != nil {
		return nil, "", err
	}
	if len(names) == 0 {
		return Detached{Commit: hash}, hash, nil
	}
	if cur, err := mc.GetHead(); err == nil {
		if a, ok := cur.(Attached); ok {
			for _, n := range names {
				if n == a.Branch {
					return a, hash, nil
				}
			}
		}
	}
	return Attached{Branch: names[0]}, hash, nil
}
