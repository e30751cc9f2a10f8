package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/jotter/pkg/core"
)

// DebounceWindow collapses bursts of events on the same key.
const DebounceWindow = 50 * time.Millisecond

// Watch reports external changes to keys matching pattern.
// The returned channel is closed once ctx is done.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %q", pattern)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	w := &watchLoop{
		storage:   s,
		pattern:   pattern,
		watcher:   watcher,
		events:    make(chan core.Event, 100),
		done:      make(chan struct{}),
		debouncer: newDebouncer(DebounceWindow),
	}
	s.setWatcherActive(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		if s.config.ErrorHandler != nil {
			s.config.ErrorHandler(fmt.Errorf("watcher failed: %w", err))
			return
		}
		s.config.Logger.Error("watcher failed", "error", err)
	}))

	return w.events, nil
}

type watchLoop struct {
	storage   *Storage
	pattern   string
	watcher   *fsnotify.Watcher
	debouncer *debouncer

	events chan core.Event
	done   chan struct{} // closed before events, releases blocked emits
	sendMu sync.RWMutex
	closed bool
}

func (w *watchLoop) run(ctx context.Context) (err error) {
	logger := w.storage.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", err)
			}
		}
		w.debouncer.stopAndWait(5 * time.Second)
		w.closeEvents()
		w.storage.setWatcherActive(false)
	}()
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("fsnotify error", "error", wErr)
			if w.storage.config.ErrorHandler != nil {
				w.storage.config.ErrorHandler(wErr)
			}
		}
	}
}

func (w *watchLoop) handle(ctx context.Context, event fsnotify.Event) {
	key, ok := keyFromFilename(filepath.Base(event.Name))
	if !ok {
		return
	}
	if match, _ := doublestar.Match(w.pattern, key); !match {
		return
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}
	w.storage.config.Logger.Debug("event received", "key", key, "op", event.Op.String())
	w.storage.recordEvent()

	w.debouncer.add(core.Event{
		Type:      eType,
		ID:        key,
		Timestamp: time.Now().Unix(),
	}, func(e core.Event) {
		w.emit(ctx, e)
	})
}

// emit delivers e unless the loop has shut down. It never sends on a
// closed channel, even when the debouncer outlived its stop timeout.
func (w *watchLoop) emit(ctx context.Context, e core.Event) {
	w.sendMu.RLock()
	defer w.sendMu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.events <- e:
	case <-ctx.Done():
	case <-w.done:
	}
}

func (w *watchLoop) closeEvents() {
	close(w.done)
	w.sendMu.Lock()
	defer w.sendMu.Unlock()
	w.closed = true
	close(w.events)
}

// mapEventType translates fsnotify ops. Atomic writes surface as Create
// on the final name because the temp file is renamed over it.
func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}

// debouncer keeps the last event per key and emits it once the key has
// been quiet for the window.
type debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) add(event core.Event, emit func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if t, ok := d.timers[event.ID]; ok && t.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.window, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[event.ID] == t {
			delete(d.timers, event.ID)
		}
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			emit(event)
		}
	})
	d.timers[event.ID] = t
}

// stopAndWait drops pending events and waits for in-flight emits.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for id, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, id)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
