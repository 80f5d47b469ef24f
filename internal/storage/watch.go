package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is how long the watcher waits after the last change
// before reporting a batch. Editors and sync tools touch files several
// times in quick succession; one refresh per burst is enough.
const DebounceInterval = 500 * time.Millisecond

// WatchedExtensions are the file types that trigger a catalog refresh.
var WatchedExtensions = []string{".json", ".pdf", ".txt", ".md"}

// Watcher monitors library directories and reports batches of changed
// paths after a debounce interval.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions []string
	debounce   time.Duration
}

// NewWatcher creates a watcher for the given extensions.
// Passing nil selects WatchedExtensions.
func NewWatcher(extensions []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if len(extensions) == 0 {
		extensions = WatchedExtensions
	}

	return &Watcher{
		watcher:    w,
		extensions: extensions,
		debounce:   DebounceInterval,
	}, nil
}

// Add registers a directory to monitor. Watching is not recursive.
func (w *Watcher) Add(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run blocks, invoking onChange with the sorted batch of changed paths
// each time the debounce interval passes without further events.
// Returns nil when the context is cancelled.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	pending := make(map[string]struct{})

	// Timer starts nil so a quiet watcher selects on a nil channel.
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})
			onChange(paths)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching: %w", err)
		}
	}
}

// relevant reports whether the event should count toward a refresh:
// a create, write, remove or rename of a watched file type. Dotfiles
// are skipped so our own atomic-save temp files do not retrigger us.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	const ops = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	if event.Op&ops == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return w.watchedExtension(event.Name)
}

// watchedExtension checks if the file has a watched extension.
func (w *Watcher) watchedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
