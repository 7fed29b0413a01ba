package meta

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/config"
	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/fs"
)

const logExt = ".jsonl"

func zapBranch(name string) zap.Field { return zap.String("branch", name) }
func zapCommit(hash string) zap.Field { return zap.String("commit", ShortHash(hash)) }

// loadLogs fills the commit cache from every log file once.
func (mc *MetaContext) loadLogs() error {
	if mc.commits != nil {
		return nil
	}
	commits := make(map[string]*Commit)
	logOf := make(map[string]string)

	entries, err := mc.FS.ReadDir(mc.Config.CommitsDir())
	if err != nil && !mc.FS.IsNotExist(err) {
		return fmt.Errorf("read commit logs: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), logExt) || fs.IsTemp(e.Name()) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), logExt)
		list, err := mc.readLog(filepath.Join(mc.Config.CommitsDir(), e.Name()))
		if err != nil {
			return err
		}
		for _, c := range list {
			if _, dup := commits[c.Hash]; !dup {
				commits[c.Hash] = c
				logOf[c.Hash] = name
			}
		}
	}
	mc.commits = commits
	mc.logOf = logOf
	mc.Log.Debug("commit logs loaded", zap.Int("commits", len(commits)))
	return nil
}

// Reload drops the commit cache so the next lookup rereads the logs. Another
// process may have appended commits since this handle last read them.
func (mc *MetaContext) Reload() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.commits = nil
	mc.logOf = nil
}

// lookup finds hash in the cache, rereading the logs once on a miss.
// mc.mu must be held.
func (mc *MetaContext) lookup(hash string) (*Commit, bool, error) {
	if err := mc.loadLogs(); err != nil {
		return nil, false, err
	}
	if c, ok := mc.commits[hash]; ok {
		return c, true, nil
	}
	mc.commits, mc.logOf = nil, nil
	if err := mc.loadLogs(); err != nil {
		return nil, false, err
	}
	c, ok := mc.commits[hash]
	return c, ok, nil
}

func (mc *MetaContext) readLog(path string) ([]*Commit, error) {
	data, err := mc.FS.ReadFile(path)
	if err != nil {
		if mc.FS.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log %q: %w", path, err)
	}
	var out []*Commit
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var c Commit
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, errs.E(errs.ErrStoreCorruption, "read log", fmt.Sprintf("%s:%d", filepath.Base(path), line), err)
		}
		out = append(out, &c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan log %q: %w", path, err)
	}
	return out, nil
}

// appendLog publishes the log file with one more line.
func (mc *MetaContext) appendLog(name string, c *Commit) error {
	path := mc.Config.LogFile(name)
	existing, err := mc.FS.ReadFile(path)
	if err != nil && !mc.FS.IsNotExist(err) {
		return fmt.Errorf("read log %q: %w", name, err)
	}
	line, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode commit: %w", err)
	}
	buf := make([]byte, 0, len(existing)+len(line)+1)
	buf = append(buf, existing...)
	if len(buf) > 0 && buf[len(buf)-1] != '\n' {
		buf = append(buf, '\n')
	}
	buf = append(buf, line...)
	buf = append(buf, '\n')
	return fs.WriteFileAtomic(mc.FS, path, buf, 0o644)
}

// CreateCommit records a new commit and advances HEAD's target to it.
//
// The first parent must be the current target of HEAD; a root commit is
// only accepted while the attached branch has no ref yet.
func (mc *MetaContext) CreateCommit(in NewCommit) (*Commit, error) {
	head, err := mc.GetHead()
	if err != nil {
		return nil, err
	}
	switch h := head.(type) {
	case Attached:
		return mc.CreateCommitOn(h.Branch, in)
	case Detached:
		return mc.commit(in, config.DetachedLog, h.Commit, true, func(c *Commit) error {
			return mc.SetHead(Detached{Commit: c.Hash})
		})
	}
	return nil, fmt.Errorf("commit: unsupported head %T", head)
}

// CreateCommitOn records a new commit on branch, whether or not HEAD is
// attached to it, and moves the branch ref.
func (mc *MetaContext) CreateCommitOn(branch string, in NewCommit) (*Commit, error) {
	if err := ValidateBranchName(branch); err != nil {
		return nil, err
	}
	b, err := mc.GetBranch(branch)
	exists := true
	switch {
	case err == nil:
	case errs.KindOf(err) == errs.ErrNotFound:
		exists = false
		b = &Branch{Name: branch}
	default:
		return nil, err
	}
	return mc.commit(in, branch, b.Head, exists, func(c *Commit) error {
		return mc.SetBranchHead(branch, c.Hash)
	})
}

// commit checks that the first parent is want, appends the commit to the
// named log and calls advance. A missing target only accepts root commits.
func (mc *MetaContext) commit(in NewCommit, logName, want string, exists bool, advance func(*Commit) error) (*Commit, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if err := mc.loadLogs(); err != nil {
		return nil, err
	}
	for _, p := range in.Parents {
		if _, ok := mc.commits[p]; !ok {
			return nil, errs.E(errs.ErrNotFound, "commit parent", p)
		}
	}

	var first string
	if len(in.Parents) > 0 {
		first = in.Parents[0]
	}
	switch {
	case !exists && first != "":
		return nil, errs.E(errs.ErrDirtyState, "commit", logName,
			fmt.Errorf("branch has no ref to extend")).WithHead(mc.DescribeHead())
	case exists && first != want:
		return nil, errs.E(errs.ErrDirtyState, "commit", logName,
			fmt.Errorf("first parent %s is not the current head %s", ShortHash(first), ShortHash(want))).WithHead(mc.DescribeHead())
	}

	c, err := mc.build(in)
	if err != nil {
		return nil, err
	}
	if err := mc.appendLog(logName, c); err != nil {
		return nil, err
	}
	mc.commits[c.Hash] = c
	mc.logOf[c.Hash] = logName

	if err := advance(c); err != nil {
		return nil, err
	}
	mc.Log.Debug("commit created", zapCommit(c.Hash), zap.String("log", logName), zap.Int("parents", len(c.Parents)))
	return c, nil
}

// GetCommit returns the commit with the exact hash.
func (mc *MetaContext) GetCommit(hash string) (*Commit, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	c, ok, err := mc.lookup(hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.E(errs.ErrNotFound, "commit", hash)
	}
	return c, nil
}

// LogOf names the log file a commit was recorded in.
func (mc *MetaContext) LogOf(hash string) string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.loadLogs() != nil {
		return ""
	}
	return mc.logOf[hash]
}

// AllCommits returns every recorded commit, oldest first.
func (mc *MetaContext) AllCommits() ([]*Commit, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if err := mc.loadLogs(); err != nil {
		return nil, err
	}
	out := make([]*Commit, 0, len(mc.commits))
	for _, c := range mc.commits {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Hash < out[j].Hash
	})
	return out, nil
}

// FirstParentChain walks first parents from hash, newest first. A limit
// of zero or less means no limit.
func (mc *MetaContext) FirstParentChain(hash string, limit int) ([]*Commit, error) {
	var out []*Commit
	seen := make(map[string]bool)
	for cur := hash; cur != ""; {
		if seen[cur] {
			return nil, errs.E(errs.ErrStoreCorruption, "log", cur, fmt.Errorf("cycle in history"))
		}
		seen[cur] = true
		c, err := mc.GetCommit(cur)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
		cur = c.FirstParent()
	}
	return out, nil
}

// BranchLog walks the history of a branch from its head.
func (mc *MetaContext) BranchLog(branch string, limit int) ([]*Commit, error) {
	b, err := mc.GetBranch(branch)
	if err != nil {
		return nil, err
	}
	if b.Head == "" {
		return nil, nil
	}
	return mc.FirstParentChain(b.Head, limit)
}

// Ancestors returns hash and every commit reachable from it through any parent.
func (mc *MetaContext) Ancestors(hash string) (map[string]bool, error) {
	seen := make(map[string]bool)
	stack := []string{hash}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == "" || seen[cur] {
			continue
		}
		c, err := mc.GetCommit(cur)
		if err != nil {
			return nil, err
		}
		seen[cur] = true
		stack = append(stack, c.Parents...)
	}
	return seen, nil
}

// IsAncestor reports whether anc is reachable from desc.
func (mc *MetaContext) IsAncestor(anc, desc string) (bool, error) {
	set, err := mc.Ancestors(desc)
	if err != nil {
		return false, err
	}
	return set[anc], nil
}
