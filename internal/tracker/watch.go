package tracker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fim/internal/walk"
	"fim/shared/types"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Watcher reclassifies files as filesystem events arrive and reports each
// file whose classification differs from the one last reported for it.
// Files never reported count as Unchanged.
type Watcher struct {
	tracker *Tracker
	root    string
	watcher *fsnotify.Watcher
	last    *lru.Cache[string, shared.Status]
	logger  *zap.Logger
}

// NewWatcher watches every directory under root except the store.
func (t *Tracker) NewWatcher(root string, cacheSize int) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", root, err)
	}

	last, err := lru.New[string, shared.Status](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		tracker: t,
		root:    absRoot,
		watcher: fw,
		last:    last,
		logger:  t.Logger,
	}

	if err := fw.Add(absRoot); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", absRoot, err)
	}
	for e, err := range walk.Walk(absRoot, t.Skip...) {
		if err != nil {
			w.logger.Warn("not watching directory", zap.String("path", e.Path), zap.Error(err))
			continue
		}
		if e.Kind != walk.Dir {
			continue
		}
		if err := fw.Add(e.Path); err != nil {
			w.logger.Warn("not watching directory", zap.String("path", e.Path), zap.Error(err))
		}
	}

	return w, nil
}

// Run processes events one at a time until ctx is done or the watcher is
// closed. emit is called from Run's goroutine only.
func (w *Watcher) Run(ctx context.Context, emit func(shared.Change)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, emit)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, emit func(shared.Change)) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Chmod) {
		return
	}
	if w.ignored(event.Name) {
		return
	}

	info, err := os.Lstat(event.Name)
	if err != nil {
		// Gone again before we looked; deletions are not reported.
		w.last.Remove(event.Name)
		return
	}

	switch {
	case info.IsDir():
		if event.Has(fsnotify.Create) {
			w.addDir(event.Name, emit)
		}
	case info.Mode().IsRegular():
		w.check(event.Name, info, emit)
	}
}

// addDir starts watching a new directory and everything already inside it.
func (w *Watcher) addDir(dir string, emit func(shared.Change)) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("not watching directory", zap.String("path", dir), zap.Error(err))
	}
	for e, err := range walk.Walk(dir, w.tracker.Skip...) {
		if err != nil {
			w.logger.Warn("skipping entry", zap.String("path", e.Path), zap.Error(err))
			continue
		}
		if e.Kind == walk.Dir {
			if err := w.watcher.Add(e.Path); err != nil {
				w.logger.Warn("not watching directory", zap.String("path", e.Path), zap.Error(err))
			}
			continue
		}
		info, err := os.Stat(e.Path)
		if err != nil {
			continue
		}
		w.check(e.Path, info, emit)
	}
}

func (w *Watcher) check(path string, info os.FileInfo, emit func(shared.Change)) {
	status, err := w.tracker.Classify(path, info)
	if err != nil {
		w.logger.Warn("skipping entry", zap.String("path", path), zap.Error(err))
		return
	}

	prev, ok := w.last.Get(path)
	if !ok {
		prev = shared.Unchanged
	}
	if prev == status {
		return
	}

	w.last.Add(path, status)
	emit(shared.Change{Path: path, Status: status})
}

// ignored reports whether path is inside a skipped directory.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		for _, s := range w.tracker.Skip {
			if part == s {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
