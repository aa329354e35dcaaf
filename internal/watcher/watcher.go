// Package watcher reports changes to the hydrolog database made by other
// processes.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period that closes a burst of writes.
const DefaultDebounce = 250 * time.Millisecond

// Change is emitted once per burst of writes to the database files.
type Change struct {
	Files     []string
	Timestamp time.Time
}

// Watcher monitors the SQLite database file and its journal files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	names     map[string]bool
	debounce  time.Duration

	changes chan Change
	errors  chan error

	// Control
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for the database at dbPath. A non-positive debounce
// uses DefaultDebounce.
func New(dbPath string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	base := filepath.Base(abs)
	return &Watcher{
		fsWatcher: fsWatcher,
		dir:       filepath.Dir(abs),
		// The -shm file changes on reads too, so it is ignored.
		names: map[string]bool{
			base:              true,
			base + "-wal":     true,
			base + "-journal": true,
		},
		debounce: debounce,
		changes:  make(chan Change, 1),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}, nil
}

// Changes returns the channel of debounced change notifications.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching the database directory. The watcher stops when ctx
// is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.eventLoop(ctx)
	return nil
}

// Stop shuts the watcher down and closes its channels.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
		close(w.changes)
		close(w.errors)
	})
	return err
}

func (w *Watcher) relevant(name string) bool {
	return filepath.Dir(name) == w.dir && w.names[filepath.Base(name)]
}

// eventLoop collects fsnotify events and emits one Change after each quiet
// period.
func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := map[string]bool{}
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			pending[filepath.Base(event.Name)] = true
			timer.Reset(w.debounce)

		case now := <-timer.C:
			if len(pending) == 0 {
				continue
			}
			c := Change{Timestamp: now}
			for name := range pending {
				c.Files = append(c.Files, name)
			}
			pending = map[string]bool{}
			// A notification already waiting covers this one too.
			select {
			case w.changes <- c:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}
