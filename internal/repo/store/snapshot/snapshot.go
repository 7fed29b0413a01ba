// Package snapshot captures the tracked tree into the object store and
// restores it back.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/errs"
	"github.com/keshon/kvc/internal/repo/store/file"
	"github.com/keshon/kvc/internal/repo/store/object"
)

// Engine captures and restores snapshots.
type Engine struct {
	Objects  *object.Store
	Tree     *file.Tree
	Compress bool
	Log      *zap.Logger
}

func New(objects *object.Store, tree *file.Tree, compress bool, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{Objects: objects, Tree: tree, Compress: compress, Log: log}
}

// Capture stores each document in paths and a manifest describing them.
// It returns the manifest hash.
func (e *Engine) Capture(paths []string) (string, error) {
	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		data, err := e.Tree.Read(p)
		if err != nil {
			return "", fmt.Errorf("capture %q: %w", p, err)
		}
		h, err := e.putDocument(data)
		if err != nil {
			return "", fmt.Errorf("capture %q: %w", p, err)
		}
		entries = append(entries, Entry{Path: p, Hash: h, Size: int64(len(data))})
	}
	return e.Store(NewManifest(entries))
}

// CaptureTree scans the tracked directory and captures every document.
func (e *Engine) CaptureTree() (string, error) {
	paths, err := e.Tree.Scan()
	if err != nil {
		return "", err
	}
	return e.Capture(paths)
}

func (e *Engine) putDocument(data []byte) (string, error) {
	if e.Compress {
		return e.Objects.PutBlob(data)
	}
	return e.Objects.Put(data)
}

// PutDocument stores content produced outside the working tree (merge
// results) and returns its entry.
func (e *Engine) PutDocument(path string, data []byte) (Entry, error) {
	h, err := e.putDocument(data)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Path: path, Hash: h, Size: int64(len(data))}, nil
}

// Store writes a manifest object and returns its hash.
func (e *Engine) Store(m *Manifest) (string, error) {
	data, err := m.Encode()
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	h, err := e.Objects.Put(data)
	if err != nil {
		return "", err
	}
	e.Log.Debug("snapshot stored", zap.String("hash", h), zap.Int("files", m.TotalFiles))
	return h, nil
}

// Load reads the manifest stored under hash.
func (e *Engine) Load(hash string) (*Manifest, error) {
	data, err := e.Objects.Get(hash)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.E(errs.ErrCorruptSnapshot, "load manifest", hash, err)
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errs.E(errs.ErrCorruptSnapshot, "decode manifest", hash, err)
	}
	return NewManifest(m.Files), nil
}

// Content returns the stored content of one manifest entry.
func (e *Engine) Content(entry Entry) ([]byte, error) {
	data, err := e.Objects.Get(entry.Hash)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.E(errs.ErrCorruptSnapshot, "read "+entry.Path, entry.Hash, err)
		}
		return nil, err
	}
	return data, nil
}

// Working hashes the current tracked tree without storing anything.
func (e *Engine) Working() (*Manifest, error) {
	paths, err := e.Tree.Scan()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		data, err := e.Tree.Read(p)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", p, err)
		}
		entries = append(entries, Entry{Path: p, Hash: e.Objects.Hash(data), Size: int64(len(data))})
	}
	return NewManifest(entries), nil
}
