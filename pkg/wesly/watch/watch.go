// Package watch reruns a callback when source files change on disk.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors a set of files for changes
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool // absolute paths being watched
	debounce time.Duration
	log      *slog.Logger

	mu        sync.Mutex
	changeSeq uint64
}

// New creates a watcher for files. Their parent directories are watched so
// that editors which save by rename are still noticed.
func New(files []string, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = slog.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]bool),
		debounce: debounce,
		log:      log,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, err
		}
		log.Debug("watching directory", "dir", dir)
	}
	return w, nil
}

// Run calls onChange with the changed path after each burst of changes has
// been quiet for the debounce period. It blocks until ctx is done or the
// watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.mu.Lock()
			w.changeSeq++
			w.mu.Unlock()
			w.log.Info("file changed", "path", pending)
			onChange(pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "err", err)
		}
	}
}

// relevant reports whether event touches a watched file in a way that
// changes its content
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// ChangeSeq returns how many debounced changes have been delivered
func (w *Watcher) ChangeSeq() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changeSeq
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
