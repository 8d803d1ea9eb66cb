// Package watch triggers a callback when the corpus file changes.
package watch

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// FileWatcher watches one file. Editors often replace files instead of
// writing them in place, so the parent directory is watched and events are
// filtered by name. Bursts of events collapse into one callback.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
}

func New(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &FileWatcher{watcher: w, path: abs, debounce: debounce}, nil
}

// Run calls onChange after the file is created, written or renamed into
// place, until ctx is done or the watcher is closed. onChange runs on the
// watcher goroutine.
func (w *FileWatcher) Run(ctx context.Context, onChange func()) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			log.Printf("[INFO] corpus changed: %s", w.path)
			onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN] watcher: %v", err)
		}
	}
}

func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}
