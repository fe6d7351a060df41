// Copyright © 2024 The ELPS authors

package document

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a watched file event.
type ChangeKind int

const (
	FileWritten ChangeKind = iota
	FileRemoved
)

func (k ChangeKind) String() string {
	if k == FileRemoved {
		return "removed"
	}
	return "written"
}

// ChangeFunc is called for each matching file event.
type ChangeFunc func(path string, kind ChangeKind)

// Watcher keeps unpinned store documents in sync with the files under a
// workspace root.
type Watcher struct {
	watcher  *fsnotify.Watcher
	store    *Store
	root     string
	patterns []string
	onChange ChangeFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher over root.  Call Start to begin receiving
// events and Stop to release the watcher.
func NewWatcher(store *Store, root string, patterns []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher:  w,
		store:    store,
		root:     root,
		patterns: patterns,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// OnChange registers fn to run after the store has been updated for an
// event.  It must be called before Start.
func (w *Watcher) OnChange(fn ChangeFunc) {
	w.onChange = fn
}

// Start adds watches for root and its subdirectories and begins processing
// events.
func (w *Watcher) Start() error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.root && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Warningf("failed to watch %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop cancels event processing and waits for it to finish.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warningf("watcher: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				log.Warningf("failed to watch %s: %v", event.Name, err)
			}
			return
		}
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || !MatchAny(w.patterns, rel) || SelectorFor(event.Name) == "" {
		return
	}
	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if w.store.Remove(event.Name) {
			w.notify(event.Name, FileRemoved)
		}
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		b, err := os.ReadFile(event.Name) //#nosec G304
		if err != nil {
			log.Debugf("watcher: %v", err)
			return
		}
		if w.store.Put(event.Name, string(b)) {
			w.notify(event.Name, FileWritten)
		}
	}
}

func (w *Watcher) notify(path string, kind ChangeKind) {
	log.Debugf("%s %s", path, kind)
	if w.onChange != nil {
		w.onChange(NormalizeFilePath(path), kind)
	}
}
