package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kvc/internal/repo"
	"github.com/keshon/kvc/internal/repo/meta"
)

func newVault(t *testing.T, files map[string]string) (*repo.Repository, string) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	r, err := repo.InitAt(context.Background(), root, repo.InitOptions{Name: "mcp", Author: meta.Human{Name: "tester"}})
	require.NoError(t, err)
	return r, root
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestDefinitions(t *testing.T) {
	r, _ := newVault(t, nil)
	names := map[string]bool{}
	for _, tool := range Tools(r) {
		def := tool.Definition()
		names[def.Name] = true
		assert.NotEmpty(t, def.Description, def.Name)
	}
	for _, want := range []string{"vault_status", "vault_log", "vault_diff", "vault_commit", "context_load", "context_active"} {
		assert.True(t, names[want], "missing tool %s", want)
	}

	def := (&CommitTool{}).Definition()
	assert.Contains(t, def.InputSchema.Required, "message")
	def = (&LoadTool{}).Definition()
	assert.Contains(t, def.InputSchema.Required, "paths")
}

func TestCommitAndLog(t *testing.T) {
	r, root := newVault(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "domains", "auth"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "domains", "auth", "notes.md"), []byte("token refresh"), 0o644))

	commit := &CommitTool{repo: r}
	res, err := commit.Handle(context.Background(), makeReq(map[string]interface{}{
		"message": "Document token refresh",
		"model":   "claude",
		"session": "s-1",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "1 files changed")

	head, err := r.Meta.HeadCommit()
	require.NoError(t, err)
	assert.Equal(t, meta.Agent{Model: "claude", Session: "s-1"}, head.Author)

	log := &LogTool{repo: r}
	res, err = log.Handle(context.Background(), makeReq(map[string]interface{}{"limit": float64(1)}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "Document token refresh")
	assert.NotContains(t, text, "Initialize vault")
}

func TestCommitRequiresMessage(t *testing.T) {
	r, _ := newVault(t, nil)
	res, err := (&CommitTool{repo: r}).Handle(context.Background(), makeReq(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCommitCleanTreeIsToolError(t *testing.T) {
	r, _ := newVault(t, map[string]string{"domains/a.md": "a"})
	res, err := (&CommitTool{repo: r}).Handle(context.Background(), makeReq(map[string]interface{}{"message": "nothing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestStatusAndDiff(t *testing.T) {
	r, root := newVault(t, map[string]string{"domains/a.md": "alpha"})
	require.NoError(t, os.WriteFile(filepath.Join(root, "domains", "a.md"), []byte("alpha beta gamma"), 0o644))

	res, err := (&StatusTool{repo: r}).Handle(context.Background(), makeReq(nil))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, `"head": "main"`)
	assert.Contains(t, text, "domains/a.md")

	res, err = (&DiffTool{repo: r}).Handle(context.Background(), makeReq(map[string]interface{}{"patch": true}))
	require.NoError(t, err)
	text = resultText(t, res)
	assert.Contains(t, text, "domains/a.md")
	assert.Contains(t, text, "+alpha beta gamma")
}

func TestLoadAndActive(t *testing.T) {
	r, _ := newVault(t, map[string]string{
		"domains/auth/jwt.md":   "signing keys rotate weekly",
		"domains/billing/x.md":  "invoices",
		"domains/auth/oauth.md": "see [[jwt]]",
	})

	res, err := (&LoadTool{repo: r}).Handle(context.Background(), makeReq(map[string]interface{}{
		"paths": []interface{}{"[[jwt]]"},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "domains/auth/jwt.md")

	res, err = (&ActiveTool{repo: r}).Handle(context.Background(), makeReq(nil))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "# File: domains/auth/jwt.md")
	assert.Contains(t, text, "signing keys rotate weekly")
	assert.NotContains(t, text, "invoices")

	ix, err := r.Index()
	require.NoError(t, err)
	assert.Equal(t, []string{"domains/auth/jwt.md"}, ix.Loaded)
}

func TestLoadUnknownWikilink(t *testing.T) {
	r, _ := newVault(t, nil)
	res, err := (&LoadTool{repo: r}).Handle(context.Background(), makeReq(map[string]interface{}{"paths": "[[nope]]"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestActiveEmpty(t *testing.T) {
	r, _ := newVault(t, nil)
	res, err := (&ActiveTool{repo: r}).Handle(context.Background(), makeReq(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "empty")
}

func TestCommitDefaultsToModelHint(t *testing.T) {
	r, root := newVault(t, nil)
	r.Settings().Agent.ModelHint = "sonnet"
	require.NoError(t, os.MkdirAll(filepath.Join(root, "domains", "ops"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "domains", "ops", "runbook.md"), []byte("restart"), 0o644))

	res, err := (&CommitTool{repo: r}).Handle(context.Background(), makeReq(map[string]interface{}{
		"message": "Add runbook",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	head, err := r.Meta.HeadCommit()
	require.NoError(t, err)
	assert.Equal(t, meta.Agent{Model: "sonnet"}, head.Author)
}
