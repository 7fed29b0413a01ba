package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/keshon/kvc/internal/fs"
)

func TestWriteFileAtomic_OS(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "refs", "heads", "main")

	if err := fs.WriteFileAtomic(fs.NewOSFS(), target, []byte("abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFileAtomic(fs.NewOSFS(), target, []byte("def\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "def\n" {
		t.Fatalf("expected def, got %q", got)
	}

	fi, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o644 {
		t.Fatalf("expected 0644, got %v", fi.Mode().Perm())
	}

	entries, _ := os.ReadDir(filepath.Dir(target))
	for _, e := range entries {
		if fs.IsTemp(e.Name()) {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteFileAtomic_RenameFailureCleansTemp(t *testing.T) {
	defer fs.SetHooks(fs.Hooks{Rename: func(string, string) error { return errors.New("rename-fail") }})()

	dir := t.TempDir()
	target := filepath.Join(dir, "HEAD")
	if err := fs.WriteFileAtomic(fs.NewOSFS(), target, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, found %d entries", len(entries))
	}
}

func TestCompressedFS_RoundTrip(t *testing.T) {
	m := fs.NewMemoryFS()
	c := fs.NewCompressedFS(m)

	data := []byte("knowledge knowledge knowledge knowledge")
	if err := c.WriteFile("objects/ab/cdef", data, 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := m.ReadFile("objects/ab/cdef")
	if err != nil {
		t.Fatal(err)
	}
	if !fs.IsCompressed(raw) {
		t.Fatal("expected gzip payload on disk")
	}

	got, err := c.ReadFile("objects/ab/cdef")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(data) {
		t.Fatalf("expected %q, got %q", data, got)
	}
}
