package index

import "sort"

// CharsPerToken is the byte to token ratio of EstimateTokens.
const CharsPerToken = 4

// EstimateTokens approximates the token count of n bytes of text.
func EstimateTokens(n int64) int {
	if n <= 0 {
		return 0
	}
	return int(n / CharsPerToken)
}

// Entry is one document of the active set.
type Entry struct {
	Path   string `json:"path" yaml:"path"`
	Size   int64  `json:"size" yaml:"size"`
	Tokens int    `json:"tokens" yaml:"tokens"`
	Pinned bool   `json:"pinned" yaml:"pinned"`
}

// Active is the resolved active context.
type Active struct {
	Entries     []Entry `json:"entries" yaml:"entries"`
	TotalSize   int64   `json:"total_size" yaml:"total_size"`
	TotalTokens int     `json:"total_tokens" yaml:"total_tokens"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	OverBudget  bool    `json:"over_budget" yaml:"over_budget"`
	// Missing lists literal entries that match no tracked document.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Paths returns the paths of the active entries.
func (a *Active) Paths() []string {
	out := make([]string, len(a.Entries))
	for i, e := range a.Entries {
		out[i] = e.Path
	}
	return out
}

// ActiveSet computes (loaded ∪ pinned) minus excluded over the tracked
// documents. sizeOf reports the byte size of a tracked path.
func (ix *Index) ActiveSet(tracked []string, sizeOf func(string) (int64, error)) (*Active, error) {
	selectors := make([]string, 0, len(ix.Loaded)+len(ix.Pinned)+len(ix.Pins.AlwaysLoad))
	selectors = append(selectors, ix.Loaded...)
	selectors = append(selectors, ix.Pinned...)
	selectors = append(selectors, ix.Pins.AlwaysLoad...)

	act := &Active{MaxTokens: ix.MaxTokens, Entries: []Entry{}}
	matched := make(map[string]bool)
	for _, p := range tracked {
		if !coveredBy(selectors, p) {
			continue
		}
		for _, s := range selectors {
			if Covers(s, p) {
				matched[Clean(s)] = true
			}
		}
		if ix.IsExcluded(p) {
			continue
		}
		size, err := sizeOf(p)
		if err != nil {
			return nil, err
		}
		e := Entry{Path: p, Size: size, Tokens: EstimateTokens(size), Pinned: ix.IsPinned(p)}
		act.Entries = append(act.Entries, e)
		act.TotalSize += size
		act.TotalTokens += e.Tokens
	}
	sort.Slice(act.Entries, func(i, j int) bool { return act.Entries[i].Path < act.Entries[j].Path })

	seen := make(map[string]bool)
	for _, s := range selectors {
		s = Clean(s)
		if s == "" || seen[s] || matched[s] || containsGlob(s) {
			continue
		}
		seen[s] = true
		act.Missing = append(act.Missing, s)
	}
	sort.Strings(act.Missing)

	act.OverBudget = act.MaxTokens > 0 && act.TotalTokens > act.MaxTokens
	return act, nil
}

func containsGlob(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[':
			return true
		}
	}
	return false
}
