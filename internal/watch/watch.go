// Package watch reports edits to tracked documents in debounced batches.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/config"
	kfs "github.com/keshon/kvc/internal/fs"
	"github.com/keshon/kvc/internal/repo/store/file"
)

// DefaultDebounce is the quiet period after the last event before a batch is
// delivered.
const DefaultDebounce = 2 * time.Second

// Batch is a set of tracked paths that changed during one debounce window.
type Batch struct {
	Paths []string
	At    time.Time
}

// Handler receives batches. A returned error stops Run.
type Handler func(ctx context.Context, b Batch) error

// Watcher watches the tracked directory of a vault.
type Watcher struct {
	tree     *file.Tree
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      *zap.Logger
}

// New watches every directory below the tracked root of tree.
func New(tree *file.Tree, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{tree: tree, fsw: fsw, debounce: debounce, log: log}
	if err := w.addRecursive(tree.Abs(tree.Tracked)); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying watches.
func (w *Watcher) Close() error { return w.fsw.Close() }

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if d.Name() == config.MetaDir {
			return filepath.SkipDir
		}
		if rel, rerr := w.tree.Rel(p); rerr == nil && rel != w.tree.Tracked && rel != "." && w.tree.Ignore.Match(rel) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

// relevant maps an event path to a tracked document path.
func (w *Watcher) relevant(name string) (string, bool) {
	if kfs.IsTemp(name) {
		return "", false
	}
	rel, err := w.tree.Rel(name)
	if err != nil || !w.tree.Contains(rel) {
		return "", false
	}
	return rel, true
}

// Run delivers batches to h until ctx is cancelled. A pending batch is
// flushed before Run returns.
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	arm := func() {
		if len(pending) == 0 {
			return
		}
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	flush := func(ctx context.Context) error {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
		if len(pending) == 0 {
			return nil
		}
		b := Batch{At: time.Now()}
		for p := range pending {
			b.Paths = append(b.Paths, p)
		}
		sort.Strings(b.Paths)
		clear(pending)
		w.log.Debug("change batch", zap.Int("paths", len(b.Paths)))
		return h(ctx, b)
	}

	for {
		select {
		case <-ctx.Done():
			if err := flush(context.WithoutCancel(ctx)); err != nil {
				return err
			}
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return flush(ctx)
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.addRecursive(ev.Name); err != nil {
						w.log.Warn("watch new directory", zap.String("path", ev.Name), zap.Error(err))
					}
					// files may have landed before the watch was added
					w.markTree(ev.Name, pending)
					arm()
					continue
				}
			}
			if rel, ok := w.relevant(ev.Name); ok {
				pending[rel] = true
				arm()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return flush(ctx)
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn("watch queue overflowed; changes are picked up on the next batch")
				continue
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timerC:
			timer, timerC = nil, nil
			if err := flush(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) markTree(dir string, pending map[string]bool) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, ok := w.relevant(p); ok {
			pending[rel] = true
		}
		return nil
	})
}
