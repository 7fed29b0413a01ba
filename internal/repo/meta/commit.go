package meta

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/kvc/internal/hashing"
)

// ContextSummary describes what a commit changed.
type ContextSummary struct {
	DomainsTouched []string `json:"domains_touched" yaml:"domains_touched"`
	FilesChanged   int      `json:"files_changed" yaml:"files_changed"`
	TokenEstimate  int      `json:"token_estimate" yaml:"token_estimate"`
	ActiveTokens   int      `json:"active_tokens,omitempty" yaml:"active_tokens,omitempty"`
}

// Commit is an immutable node of the history graph.
type Commit struct {
	Hash      string
	Parents   []string
	Timestamp time.Time
	Author    Author
	Message   string
	Summary   ContextSummary
	Snapshot  string
}

// NewCommit holds the caller supplied fields of a commit.
type NewCommit struct {
	Parents  []string
	Author   Author
	Message  string
	Snapshot string
	Summary  ContextSummary
}

// IsMerge reports whether c has two parents.
func (c *Commit) IsMerge() bool { return len(c.Parents) > 1 }

// IsRoot reports whether c has no parents.
func (c *Commit) IsRoot() bool { return len(c.Parents) == 0 }

// FirstParent returns the first parent or "".
func (c *Commit) FirstParent() string {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// Short returns the abbreviated hash.
func (c *Commit) Short() string { return ShortHash(c.Hash) }

// ShortHash abbreviates a hash for display.
func ShortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

type commitRecord struct {
	Hash      string         `json:"hash,omitempty" yaml:"hash,omitempty"`
	Parents   []string       `json:"parents" yaml:"parents"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Author    authorJSON     `json:"author" yaml:"author"`
	Message   string         `json:"message" yaml:"message"`
	Summary   ContextSummary `json:"context_summary" yaml:"context_summary"`
	Snapshot  string         `json:"snapshot" yaml:"snapshot"`
}

func (c *Commit) record(withHash bool) commitRecord {
	parents := c.Parents
	if parents == nil {
		parents = []string{}
	}
	summary := c.Summary
	if summary.DomainsTouched == nil {
		summary.DomainsTouched = []string{}
	}
	rec := commitRecord{
		Parents:   parents,
		Timestamp: c.Timestamp.UTC(),
		Author:    encodeAuthor(c.Author),
		Message:   c.Message,
		Summary:   summary,
		Snapshot:  c.Snapshot,
	}
	if withHash {
		rec.Hash = c.Hash
	}
	return rec
}

// MarshalJSON encodes the full commit record, hash included.
func (c Commit) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.record(true))
}

// MarshalYAML renders the same record as MarshalJSON.
func (c Commit) MarshalYAML() (any, error) {
	return c.record(true), nil
}

// UnmarshalJSON decodes a commit record.
func (c *Commit) UnmarshalJSON(data []byte) error {
	var rec commitRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	author, err := decodeAuthor(rec.Author)
	if err != nil {
		return err
	}
	*c = Commit{
		Hash:      rec.Hash,
		Parents:   rec.Parents,
		Timestamp: rec.Timestamp,
		Author:    author,
		Message:   rec.Message,
		Summary:   rec.Summary,
		Snapshot:  rec.Snapshot,
	}
	return nil
}

// ComputeHash digests every field of c except Hash.
func ComputeHash(c *Commit, hash hashing.Func) (string, error) {
	data, err := json.Marshal(c.record(false))
	if err != nil {
		return "", fmt.Errorf("encode commit: %w", err)
	}
	return hash(data), nil
}

// build fills timestamp and hash for a new commit.
func (mc *MetaContext) build(in NewCommit) (*Commit, error) {
	if in.Author == nil {
		in.Author = Human{}
	}
	c := &Commit{
		Parents:   append([]string(nil), in.Parents...),
		Timestamp: mc.Now().UTC().Round(0),
		Author:    in.Author,
		Message:   in.Message,
		Summary:   in.Summary,
		Snapshot:  in.Snapshot,
	}
	if len(c.Parents) > 2 {
		return nil, fmt.Errorf("a commit has at most two parents, got %d", len(c.Parents))
	}
	h, err := ComputeHash(c, mc.Hash)
	if err != nil {
		return nil, err
	}
	c.Hash = h
	return c, nil
}
