// Package watcher watches custom story files and announces debounced changes.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/pubsub"
)

// EventType distinguishes watcher events.
type EventType int

const (
	// FileChanged carries the path of a story file that was written.
	FileChanged EventType = iota
	// WatcherError carries an fsnotify error. Watching continues.
	WatcherError
)

// Event is the watcher's pubsub payload.
type Event struct {
	Type  EventType
	Path  string
	Error error
}

// Config holds watcher configuration options.
type Config struct {
	Paths       []string
	DebounceDur time.Duration
}

// DefaultConfig returns defaults for watching paths.
func DefaultConfig(paths ...string) Config {
	return Config{
		Paths:       paths,
		DebounceDur: 300 * time.Millisecond,
	}
}

// Watcher monitors story files. Editors often replace a file instead of
// writing it in place, so the parent directories are watched and events are
// filtered by name.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	paths     map[string]bool
	debounce  time.Duration
	broker    *pubsub.Broker[Event]
	done      chan struct{}
	stopOnce  sync.Once
}

// New creates a watcher for cfg.Paths.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	paths := make(map[string]bool, len(cfg.Paths))
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		paths[abs] = true
	}

	return &Watcher{
		fsWatcher: fsw,
		paths:     paths,
		debounce:  cfg.DebounceDur,
		broker:    pubsub.NewBroker[Event](),
		done:      make(chan struct{}),
	}, nil
}

// Broker returns the broker events are published on.
func (w *Watcher) Broker() *pubsub.Broker[Event] {
	return w.broker
}

// Start watches the directories holding the configured paths.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for p := range w.paths {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}

	go w.loop()
	log.Debug(log.CatWatcher, "Watching story files", "count", len(w.paths))
	return nil
}

// Stop terminates the watcher and releases resources. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.broker.Close()
	})
	return err
}

// loop debounces events per path: a burst of writes to one file yields a
// single FileChanged once the file has been quiet for the debounce window.
func (w *Watcher) loop() {
	timers := make(map[string]*time.Timer)
	fire := make(chan string, len(w.paths)+1)

	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			path, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			if t, ok := timers[path]; ok {
				t.Stop()
			}
			timers[path] = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- path:
				case <-w.done:
				}
			})

		case path := <-fire:
			delete(timers, path)
			log.Debug(log.CatWatcher, "Story file changed", "path", path)
			w.broker.Publish(pubsub.ChangedEvent, Event{Type: FileChanged, Path: path})

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatcher, "Watcher error", "error", err)
			w.broker.Publish(pubsub.ChangedEvent, Event{Type: WatcherError, Error: err})

		case <-w.done:
			return
		}
	}
}

// relevant reports whether event is a write or create of a watched path.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return "", false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	return abs, w.paths[abs]
}
