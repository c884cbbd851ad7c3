// Package watcher binds a filesystem notifier to one specific file. The
// notifier watches the file's parent directory (most OS facilities cannot
// watch a single file, and atomic-replace saves surface as directory-level
// create+rename); this package filters that stream down to "the tracked file
// changed" and fans an edge-triggered signal out to subscribers, collapsing
// each burst of events into a single notification.
package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	adapter "github.com/corey/confwatch/internal/adapters/fsnotify"
	"github.com/corey/confwatch/internal/ports"
)

// defaultSettle is how long the run loop keeps draining a burst before it
// decides the batch is over. Editors commonly emit several events per save.
const defaultSettle = 100 * time.Millisecond

// ErrNoSubscribers is returned when a watcher is constructed without anyone
// to notify.
var ErrNoSubscribers = errors.New("watcher: at least one subscriber required")

// Options tune a FileWatcher. The zero value selects the production fsnotify
// notifier, the default settle window, and slog.Default().
type Options struct {
	// Notifier opens the directory registration. Tests inject a fake here.
	Notifier ports.NotifierFactory
	// Settle is the burst-coalescing window.
	Settle time.Duration
	// Logger receives loop diagnostics.
	Logger *slog.Logger
}

// FileWatcher watches exactly one regular file for its lifetime.
type FileWatcher struct {
	file     string
	dir      string
	settle   time.Duration
	logger   *slog.Logger
	notifier ports.DirNotifier

	mu          sync.Mutex
	subscribers map[ports.Reloadable]struct{}
	closed      bool
}

// New creates a watcher bound to file with the production fsnotify facility.
func New(file string, subscribers ...ports.Reloadable) (*FileWatcher, error) {
	return NewWithOptions(file, Options{}, subscribers...)
}

// NewWithOptions creates a watcher bound to file. The file must exist and be
// a regular file, and at least one subscriber is required. The watcher
// registers on the file's parent directory immediately; call Run (usually on
// its own goroutine) to start delivering notifications.
func NewWithOptions(file string, opts Options, subscribers ...ports.Reloadable) (*FileWatcher, error) {
	if file == "" {
		return nil, errors.New("watcher: file path required")
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("watcher: %s must be a regular file", abs)
	}
	if len(subscribers) == 0 {
		return nil, ErrNoSubscribers
	}

	factory := opts.Notifier
	if factory == nil {
		factory = adapter.New
	}
	settle := opts.Settle
	if settle <= 0 {
		settle = defaultSettle
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(abs)
	notifier, err := factory(dir)
	if err != nil {
		return nil, fmt.Errorf("watcher: register %s: %w", dir, err)
	}

	w := &FileWatcher{
		file:        abs,
		dir:         dir,
		settle:      settle,
		logger:      logger.With("component", "watcher", "file", abs),
		notifier:    notifier,
		subscribers: make(map[ports.Reloadable]struct{}, len(subscribers)),
	}
	for _, s := range subscribers {
		w.subscribers[s] = struct{}{}
	}
	return w, nil
}

// File returns the path the watcher is bound to.
func (w *FileWatcher) File() string { return w.file }

// RegisterSubscriber adds a subscriber to be notified on changes to the file.
func (w *FileWatcher) RegisterSubscriber(s ports.Reloadable) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subscribers[s] = struct{}{}
}

// UnregisterSubscriber removes a subscriber, reporting whether it was
// registered.
func (w *FileWatcher) UnregisterSubscriber(s ports.Reloadable) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.subscribers[s]
	delete(w.subscribers, s)
	return ok
}

// Run blocks, delivering one Reload fan-out per detected change-burst, until
// the watcher is closed, the facility shuts down, or the watched directory
// disappears. Run never panics out; run it on a dedicated goroutine.
func (w *FileWatcher) Run() {
	events := w.notifier.Events()
	errs := w.notifier.Errors()

	for {
		var (
			changed, dirGone bool
			event            ports.DirEvent
			ok               bool
		)
		// Block until the first event of a batch.
		select {
		case event, ok = <-events:
			if !ok {
				w.logger.Debug("notifier closed, watch loop exiting")
				return
			}
			changed, dirGone = w.classify(event)
		case err, errsOpen := <-errs:
			if !errsOpen {
				errs = nil
				continue
			}
			w.logger.Warn("watch facility error", "error", err)
			continue
		}

		burstChanged, burstGone, open := w.drainBurst(events, &errs)
		changed = changed || burstChanged
		dirGone = dirGone || burstGone

		if changed {
			w.notify()
		}
		if dirGone {
			w.logger.Warn("watched directory no longer valid, watch loop exiting")
			return
		}
		if !open {
			w.logger.Debug("notifier closed, watch loop exiting")
			return
		}
		// Re-arm check: the directory can vanish without a delivered event
		// (e.g. the registration raced its removal).
		if _, err := os.Stat(w.dir); err != nil {
			w.logger.Warn("watched directory no longer valid, watch loop exiting", "error", err)
			return
		}
	}
}

// drainBurst consumes events until the settle window elapses with no new
// traffic, accumulating whether any of them qualify. Returns open=false when
// the facility channel closed mid-burst. errs is nil-ed out in the caller's
// frame once it closes so a dead channel cannot spin the select.
func (w *FileWatcher) drainBurst(events <-chan ports.DirEvent, errs *<-chan error) (changed, dirGone, open bool) {
	open = true
	timer := time.NewTimer(w.settle)
	defer timer.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return changed, dirGone, false
			}
			c, g := w.classify(event)
			changed = changed || c
			dirGone = dirGone || g

		case err, ok := <-*errs:
			if !ok {
				*errs = nil
				continue
			}
			w.logger.Warn("watch facility error", "error", err)

		case <-timer.C:
			return changed, dirGone, true
		}
	}
}

// classify decides whether one event qualifies as a change to the tracked
// file. Overflow is conservatively a possible change; anything naming a
// sibling is noise.
func (w *FileWatcher) classify(event ports.DirEvent) (changed, dirGone bool) {
	switch event.Op {
	case ports.OpOverflow:
		return true, false
	case ports.OpDirGone:
		return false, true
	default:
		return filepath.Clean(event.Path) == w.file, false
	}
}

// notify fans out to a snapshot of the subscriber set. Order is unspecified;
// each invocation is isolated so a panicking subscriber cannot take down the
// watch loop or starve the remaining subscribers.
func (w *FileWatcher) notify() {
	w.mu.Lock()
	subs := make([]ports.Reloadable, 0, len(w.subscribers))
	for s := range w.subscribers {
		subs = append(subs, s)
	}
	w.mu.Unlock()

	for _, s := range subs {
		w.safeReload(s)
	}
}

func (w *FileWatcher) safeReload(s ports.Reloadable) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("subscriber panicked", "panic", r)
		}
	}()
	s.Reload()
}

// Close cancels the directory registration and releases the facility,
// unblocking Run promptly. Safe to call multiple times.
func (w *FileWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.notifier.Close()
}
