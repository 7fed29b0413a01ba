package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/keshon/kvc/internal/repo"
	"github.com/keshon/kvc/internal/repo/diff"
	"github.com/keshon/kvc/internal/repo/index"
	"github.com/keshon/kvc/internal/repo/meta"
	"github.com/keshon/kvc/internal/wikilink"
)

// intArg extracts an integer argument, JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// stringsArg accepts a JSON array of strings or a single string.
func stringsArg(req mcp.CallToolRequest, key string) []string {
	switch v := req.GetArguments()[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(action string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", action, err))
}

// StatusTool handles vault_status.
type StatusTool struct {
	repo *repo.Repository
}

func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("vault_status",
		mcp.WithDescription("Current branch or detached commit, uncommitted document changes and the active context size."),
	)
}

func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := t.repo.Status()
	if err != nil {
		return errorResult("status", err), nil
	}
	out := map[string]any{
		"head":    st.Head.String(),
		"changes": st.Changes.Changes,
		"active": map[string]any{
			"files":       len(st.Active.Entries),
			"tokens":      st.Active.TotalTokens,
			"max_tokens":  st.Active.MaxTokens,
			"over_budget": st.Active.OverBudget,
		},
	}
	if st.Commit != nil {
		out["commit"] = st.Commit
	}
	return jsonResult(out)
}

// LogTool handles vault_log.
type LogTool struct {
	repo *repo.Repository
}

func (t *LogTool) Definition() mcp.Tool {
	return mcp.NewTool("vault_log",
		mcp.WithDescription("First-parent commit history, newest first."),
		mcp.WithString("ref", mcp.Description("Branch, hash or HEAD~N (default HEAD)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of commits (default 10)")),
	)
}

func (t *LogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := req.GetString("ref", "HEAD")
	hash, err := t.repo.Meta.ResolveRef(ref)
	if err != nil {
		return errorResult("log", err), nil
	}
	commits, err := t.repo.Meta.FirstParentChain(hash, intArg(req, "limit", 10))
	if err != nil {
		return errorResult("log", err), nil
	}

	var b strings.Builder
	for _, c := range commits {
		line, _, _ := strings.Cut(c.Message, "\n")
		fmt.Fprintf(&b, "%s %s %s (%s)\n", c.Short(), c.Timestamp.Format("2006-01-02 15:04"), line, c.Author)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// DiffTool handles vault_diff.
type DiffTool struct {
	repo *repo.Repository
}

func (t *DiffTool) Definition() mcp.Tool {
	return mcp.NewTool("vault_diff",
		mcp.WithDescription("Changed documents between two commits, or between a commit and the working tree when 'to' is omitted."),
		mcp.WithString("from", mcp.Description("Base ref (default HEAD)")),
		mcp.WithString("to", mcp.Description("Target ref (default: working tree)")),
		mcp.WithBoolean("patch", mcp.Description("Include unified diffs")),
	)
}

func (t *DiffTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := req.GetString("from", "HEAD")
	to := req.GetString("to", "")

	var cs diff.ChangeSet
	var err error
	if to == "" {
		cs, err = t.repo.DiffWorking(from)
	} else {
		cs, err = t.repo.DiffRefs(from, to)
	}
	if err != nil {
		return errorResult("diff", err), nil
	}
	if cs.Empty() {
		return mcp.NewToolResultText("no changes"), nil
	}

	var b strings.Builder
	for _, c := range cs.Changes {
		fmt.Fprintf(&b, "%s %s (%+d tokens)\n", c.Kind.Symbol(), c.Path, c.TokenDelta)
	}
	if boolArg(req, "patch", false) {
		for _, c := range cs.Changes {
			p, err := t.repo.Patch(c, to == "")
			if err != nil {
				return errorResult("diff", err), nil
			}
			b.WriteString("\n")
			b.WriteString(p)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// CommitTool handles vault_commit.
type CommitTool struct {
	repo *repo.Repository
}

func (t *CommitTool) Definition() mcp.Tool {
	return mcp.NewTool("vault_commit",
		mcp.WithDescription("Record the current documents as a commit authored by the agent."),
		mcp.WithString("message", mcp.Required(), mcp.Description("Commit message")),
		mcp.WithString("model", mcp.Description("Agent model name (default from vault config)")),
		mcp.WithString("session", mcp.Description("Agent session id")),
	)
}

func (t *CommitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg := req.GetString("message", "")
	if strings.TrimSpace(msg) == "" {
		return mcp.NewToolResultError("'message' is required"), nil
	}
	author := meta.Agent{
		Model:   req.GetString("model", t.repo.Settings().Agent.Model()),
		Session: req.GetString("session", ""),
	}
	c, err := t.repo.Commit(ctx, repo.CommitOptions{Message: msg, Author: author})
	if err != nil {
		return errorResult("commit", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("committed %s: %d files changed, ~%d tokens",
		c.Short(), c.Summary.FilesChanged, c.Summary.TokenEstimate)), nil
}

// LoadTool handles context_load.
type LoadTool struct {
	repo *repo.Repository
}

func (t *LoadTool) Definition() mcp.Tool {
	return mcp.NewTool("context_load",
		mcp.WithDescription("Add documents, directories, globs or [[wikilinks]] to the active context."),
		mcp.WithArray("paths", mcp.Required(), mcp.Description("Vault-relative paths, globs or [[wikilinks]]"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithBoolean("pin", mcp.Description("Pin instead of load, surviving checkouts")),
	)
}

func (t *LoadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := stringsArg(req, "paths")
	if len(args) == 0 {
		return mcp.NewToolResultError("'paths' is required"), nil
	}
	paths := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "[[") {
			p, err := wikilink.Resolve(t.repo.Tree, a)
			if err != nil {
				return errorResult("resolve", err), nil
			}
			a = p
		}
		paths = append(paths, index.Clean(a))
	}

	pin := boolArg(req, "pin", false)
	var warnings []string
	err := t.repo.UpdateIndex(ctx, func(ix *index.Index) error {
		if pin {
			warnings = ix.Pin(paths)
		} else {
			warnings = ix.Load(paths)
		}
		return nil
	})
	if err != nil {
		return errorResult("load", err), nil
	}
	act, err := t.repo.ActiveSet()
	if err != nil {
		return errorResult("load", err), nil
	}
	return jsonResult(map[string]any{
		"paths":    paths,
		"warnings": warnings,
		"files":    len(act.Entries),
		"tokens":   act.TotalTokens,
		"missing":  act.Missing,
	})
}

// ActiveTool handles context_active.
type ActiveTool struct {
	repo *repo.Repository
}

func (t *ActiveTool) Definition() mcp.Tool {
	return mcp.NewTool("context_active",
		mcp.WithDescription("The active context: every loaded or pinned document, concatenated with '# File:' headers."),
		mcp.WithBoolean("compress", mcp.Description("Collapse whitespace")),
		mcp.WithBoolean("list_only", mcp.Description("Only list paths and token estimates")),
	)
}

func (t *ActiveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	act, err := t.repo.ActiveSet()
	if err != nil {
		return errorResult("context", err), nil
	}
	if boolArg(req, "list_only", false) {
		return jsonResult(act)
	}
	var buf bytes.Buffer
	if err := index.Render(&buf, act, t.repo.Tree.Read, boolArg(req, "compress", false)); err != nil {
		return errorResult("context", err), nil
	}
	if buf.Len() == 0 {
		return mcp.NewToolResultText("the active context is empty; use context_load"), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
