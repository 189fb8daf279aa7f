// Package watch re-runs work when a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before fn runs.
const DefaultDebounce = 200 * time.Millisecond

// Run calls fn each time the file at path is written, created or renamed
// into place, coalescing bursts of events within debounce. It watches the
// parent directory so editors that replace the file are still seen. Writes to
// the SQLite write-ahead log next to path ("<path>-wal") count as changes.
//
// Run blocks until ctx is cancelled and returns nil in that case. onErr, if
// set, receives watcher errors; they do not stop the loop.
func Run(ctx context.Context, path string, debounce time.Duration, fn func(), onErr func(error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !matches(event.Name, abs) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onErr != nil {
				onErr(err)
			}
		case <-timer.C:
			fn()
		}
	}
}

func matches(name, abs string) bool {
	name = filepath.Clean(name)
	return name == abs || name == abs+"-wal"
}
