package broadcast

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mfshell/shellstore/internal/logging"
)

// Watcher monitors the durable-local medium's backing database for writes
// from other processes. SQLite in WAL mode touches the -wal and -shm
// companions as well as the database itself, so the watcher subscribes to
// the parent directory and filters by filename prefix.
//
// Events are debounced: a burst of filesystem writes from one logical
// store write collapses into a single callback.
type Watcher struct {
	path     string
	onChange func()

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
	log     interface {
		Warnf(string, ...any)
		Debugf(string, ...any)
	}
}

// debounceWindow is how long the watcher waits for a write burst to
// settle before firing. SQLite commits produce multiple events within a
// few milliseconds.
const debounceWindow = 50 * time.Millisecond

// NewWatcher starts watching the database file at path and invokes
// onChange (on the watcher's goroutine) after each settled write burst.
// The caller filters out its own writes by comparing persisted content.
func NewWatcher(path string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create storage watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %q: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		watcher:  fsw,
		done:     make(chan struct{}),
		log:      logging.NewLogger("storage-watcher"),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher. Idempotent.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugf("storage event: %s", event)
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(debounceWindow)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("storage watcher error: %v", err)
		}
	}
}

// relevant reports whether the event touches the watched database or one
// of its WAL companions.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(event.Name, w.path)
}
