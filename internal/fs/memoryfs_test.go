package fs_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/keshon/kvc/internal/fs"
)

func TestMemoryFS_WriteReadFile(t *testing.T) {
	m := fs.NewMemoryFS()
	if err := m.MkdirAll("domains/notes", 0o755); err != nil {
		t.Fatal(err)
	}

	content := []byte("# Notes\n")
	if err := m.WriteFile("domains/notes/a.md", content, 0o644); err != nil {
		t.Fatal(err)
	}

	read, err := m.ReadFile("domains/notes/a.md")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(read, content) {
		t.Fatalf("expected %q, got %q", content, read)
	}

	f, err := m.Open("domains/notes/a.md")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	all, err := io.ReadAll(f)
	if err != nil || !bytes.Equal(all, content) {
		t.Fatalf("open/read mismatch: %q %v", all, err)
	}
}

func TestMemoryFS_WriteFileNonExistentDir(t *testing.T) {
	m := fs.NewMemoryFS()
	if err := m.WriteFile("nope/file.md", []byte("x"), 0o644); err == nil {
		t.Fatal("expected error writing to non-existent dir")
	}
}

func TestMemoryFS_RemoveNonEmptyDir(t *testing.T) {
	m := fs.NewMemoryFS()
	m.MkdirAll("d/sub", 0o755)
	m.WriteFile("d/sub/f", []byte("x"), 0o644)

	if err := m.Remove("d/sub"); err == nil {
		t.Fatal("expected error removing non-empty dir")
	}
	if err := m.Remove("d/sub/f"); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove("d/sub"); err != nil {
		t.Fatal(err)
	}
	if m.Exists("d/sub") {
		t.Fatal("dir should be removed")
	}
	if err := m.Remove("missing"); !m.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestMemoryFS_RenameOverwrites(t *testing.T) {
	m := fs.NewMemoryFS()
	m.MkdirAll("dir", 0o755)
	m.WriteFile("dir/old", []byte("old"), 0o644)
	m.WriteFile("dir/new", []byte("new"), 0o644)

	if err := m.Rename("dir/new", "dir/old"); err != nil {
		t.Fatal(err)
	}
	got, _ := m.ReadFile("dir/old")
	if string(got) != "new" || m.Exists("dir/new") {
		t.Fatalf("rename did not replace target: %q", got)
	}

	if err := m.Rename("nope", "x"); !m.IsNotExist(err) {
		t.Fatal("expected not-exist error")
	}
}

func TestMemoryFS_ReadDirSorted(t *testing.T) {
	m := fs.NewMemoryFS()
	m.MkdirAll("root/b", 0o755)
	m.MkdirAll("root/a/deep", 0o755)
	m.WriteFile("root/c.md", []byte("x"), 0o644)
	m.WriteFile("root/a/deep/f.md", []byte("y"), 0o644)

	entries, err := m.ReadDir("root")
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"a", "b", "c.md"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if !entries[0].IsDir() || entries[2].IsDir() {
		t.Fatal("dir flags mismatch")
	}

	if _, err := m.ReadDir("missing"); !m.IsNotExist(err) {
		t.Fatal("expected not-exist error")
	}
}

func TestMemoryFS_CreateTempFileUnique(t *testing.T) {
	m := fs.NewMemoryFS()
	m.MkdirAll("tmp", 0o755)

	a, err := m.CreateTempFile("tmp", ".tmp-*")
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.CreateTempFile("tmp", ".tmp-*")
	if err != nil {
		t.Fatal(err)
	}
	if a.Name() == b.Name() {
		t.Fatalf("temp names collide: %s", a.Name())
	}

	a.Write([]byte("abc"))
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	read, err := m.ReadFile(a.Name())
	if err != nil || string(read) != "abc" {
		t.Fatalf("expected abc, got %q (%v)", read, err)
	}
	if !fs.IsTemp(a.Name()) {
		t.Fatalf("expected %s to be recognised as temp", a.Name())
	}
}

func TestMemoryFS_PathNormalization(t *testing.T) {
	m := fs.NewMemoryFS()
	m.MkdirAll("a/b", 0o755)
	m.WriteFile("a/b/f", []byte("x"), 0o644)

	if !m.Exists("a/./b/../b/f") {
		t.Fatal("path normalization failed")
	}
	if !m.IsDir("a/./b/../b") {
		t.Fatal("path normalization failed for dir")
	}
}
