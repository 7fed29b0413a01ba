package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kvc/internal/command"
)

func run(t *testing.T, dir string, args ...string) (int, string, string) {
	t.Helper()
	var out, errw bytes.Buffer
	code := command.Execute(context.Background(), append([]string{"-C", dir}, args...), &out, &errw)
	return code, out.String(), errw.String()
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	code, out, errOut := run(t, dir, args...)
	require.Equal(t, command.ExitOK, code, "kvc %v: %s", args, errOut)
	return out
}

func write(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestBranchCommitMergeWorkflow(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init", "notes", "--author", "tester")
	assert.DirExists(t, filepath.Join(dir, ".kvc"))
	assert.DirExists(t, filepath.Join(dir, "domains"))

	write(t, dir, "domains/auth/jwt.md", "rotate keys weekly")
	mustRun(t, dir, "commit", "-m", "Add jwt notes", "--author", "tester")

	mustRun(t, dir, "branch", "feature")
	mustRun(t, dir, "checkout", "feature")
	write(t, dir, "domains/auth/oauth.md", "see [[jwt]]")
	mustRun(t, dir, "commit", "-m", "Add oauth", "--model", "claude")

	mustRun(t, dir, "checkout", "main")
	assert.NoFileExists(t, filepath.Join(dir, "domains", "auth", "oauth.md"))

	mustRun(t, dir, "merge", "feature")
	assert.FileExists(t, filepath.Join(dir, "domains", "auth", "oauth.md"))

	out := mustRun(t, dir, "log", "--format", "json")
	var commits []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &commits))
	require.Len(t, commits, 3)
	parents, ok := commits[0]["parents"].([]any)
	require.True(t, ok)
	assert.Len(t, parents, 2)
	assert.Equal(t, "Add jwt notes", commits[1]["message"])

	out = mustRun(t, dir, "status", "--format", "json")
	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "main", st["head"])
	assert.Empty(t, st["changes"])
}

func TestContextCommands(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "domains/auth/jwt.md", "rotate keys weekly")
	write(t, dir, "domains/billing/invoices.md", "net 30")
	mustRun(t, dir, "init")

	mustRun(t, dir, "load", "[[jwt]]")
	out := mustRun(t, dir, "context")
	assert.Contains(t, out, "# File: domains/auth/jwt.md")
	assert.NotContains(t, out, "net 30")

	mustRun(t, dir, "unload", "--all")
	out = mustRun(t, dir, "context", "--list")
	assert.NotContains(t, out, "domains/auth/jwt.md")
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")

	code, _, _ := run(t, dir, "status", "--no-such-flag")
	assert.Equal(t, command.ExitUsage, code)

	code, _, _ = run(t, dir, "commit")
	assert.Equal(t, command.ExitUsage, code)

	code, _, errOut := run(t, dir, "checkout", "missing")
	assert.Equal(t, command.ExitFailed, code)
	assert.Contains(t, errOut, "not found")

	code, _, _ = run(t, dir, "commit", "-m", "nothing changed")
	assert.Equal(t, command.ExitFailed, code)

	code, _, _ = run(t, dir, "init")
	assert.Equal(t, command.ExitFailed, code)
}

func TestCommandOutsideVault(t *testing.T) {
	code, _, _ := run(t, t.TempDir(), "status")
	assert.Equal(t, command.ExitFailed, code)
}

func TestLoadPinAndList(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "domains/auth/jwt.md", "rotate keys weekly")
	write(t, dir, "domains/billing/invoices.md", "net 30")
	mustRun(t, dir, "init")

	mustRun(t, dir, "load", "--pin", "[[jwt]]")
	out := mustRun(t, dir, "load", "--list")
	assert.Contains(t, out, "domains/auth/jwt.md (pinned)")
	assert.NotContains(t, out, "invoices")

	mustRun(t, dir, "unload", "--all")
	out = mustRun(t, dir, "load", "--list", "--format", "json")
	var act struct {
		Entries []struct {
			Path   string `json:"path"`
			Pinned bool   `json:"pinned"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &act))
	require.Len(t, act.Entries, 1)
	assert.Equal(t, "domains/auth/jwt.md", act.Entries[0].Path)
	assert.True(t, act.Entries[0].Pinned)

	code, _, _ := run(t, dir, "load", "--list", "domains/auth")
	assert.Equal(t, command.ExitUsage, code)
}

func TestPinExclude(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "domains/auth/jwt.md", "rotate keys weekly")
	write(t, dir, "domains/drafts/old.md", "stale")
	mustRun(t, dir, "init")

	mustRun(t, dir, "pin", "--exclude", "domains/drafts")
	out := mustRun(t, dir, "load", "domains")
	assert.Contains(t, out, "loaded domains")

	out = mustRun(t, dir, "context")
	assert.Contains(t, out, "rotate keys weekly")
	assert.NotContains(t, out, "stale")

	mustRun(t, dir, "include", "domains/drafts")
	out = mustRun(t, dir, "context")
	assert.Contains(t, out, "stale")
}

func TestMergeSquash(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "domains/auth/jwt.md", "v1")
	mustRun(t, dir, "init")
	mustRun(t, dir, "branch", "feature")
	mustRun(t, dir, "checkout", "feature")
	write(t, dir, "domains/auth/jwt.md", "v2")
	mustRun(t, dir, "commit", "-m", "Second draft")
	write(t, dir, "domains/auth/jwt.md", "v3")
	mustRun(t, dir, "commit", "-m", "Third draft")
	mustRun(t, dir, "checkout", "main")

	out := mustRun(t, dir, "merge", "feature", "--squash")
	assert.Contains(t, out, "Squashed 2 commits")

	out = mustRun(t, dir, "log", "-n", "1", "--format", "json")
	var commits []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &commits))
	require.NotEmpty(t, commits)
	msg, _ := commits[0]["message"].(string)
	assert.Contains(t, msg, "Merge feature into main (squashed)")
	assert.Contains(t, msg, "Third draft")
	assert.Contains(t, msg, "Second draft")
}
