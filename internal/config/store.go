package config

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corey/confwatch/internal/ports"
	"github.com/corey/confwatch/internal/watcher"
)

// ErrNotWatching is returned by TryReload before a successful Initialize has
// bound the store to a file.
var ErrNotWatching = errors.New("config: store is not watching a file")

// Options tune a Store. The zero value is usable: no history, default
// watcher behavior, slog.Default().
type Options struct {
	// Name namespaces this store's generations in History.
	Name string
	// History, when non-nil, records every accepted configuration
	// generation. Recording failures are logged, never fatal.
	History ports.History
	// Watcher is passed through to the file watcher created on Initialize.
	// Tests use it to inject a fake notifier and shrink the settle window.
	Watcher watcher.Options
	// Logger receives load and reload diagnostics.
	Logger *slog.Logger
}

// Store owns the single current configuration value of shape T and keeps it
// synchronized with a file on disk. Do not hold on to the value returned by
// Get across reload boundaries; re-read it, it is cheap.
//
// A Store is itself a ports.Reloadable: its owned file watcher drives it, and
// stores can subscribe to other stores.
type Store[T ports.Config[T]] struct {
	name   string
	wopts  watcher.Options
	logger *slog.Logger

	// current is read lock-free by Get; replaced only under mu so that
	// concurrent reloads serialize around the compare-and-swap.
	current atomic.Pointer[T]

	mu          sync.Mutex
	subscribers map[ports.Reloadable]struct{}
	watch       *watcher.FileWatcher
	history     ports.History
}

// NewStore creates an uninitialized store. Call Initialize to load a file and
// begin watching it.
func NewStore[T ports.Config[T]](opts Options) *Store[T] {
	name := opts.Name
	if name == "" {
		name = "config"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T]{
		name:        name,
		history:     opts.History,
		wopts:       opts.Watcher,
		logger:      logger.With("component", "config", "store", name),
		subscribers: make(map[ports.Reloadable]struct{}),
	}
}

// Get returns the active configuration value. ok is false until the first
// successful load. Never blocks on I/O and never observes a half-swapped
// value.
func (s *Store[T]) Get() (T, bool) {
	if p := s.current.Load(); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// WatchedFile returns the path selected by Initialize, or "" before that.
func (s *Store[T]) WatchedFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watch == nil {
		return ""
	}
	return s.watch.File()
}

// Initialize selects a configuration file, loads it, and starts watching it
// on a background goroutine. Once a value is held this is a no-op regardless
// of arguments: the originally selected file stays watched. With no explicit
// paths the shape's DefaultPaths are tried. The first existing candidate
// wins; if none exist, the first JSON-suffixed candidate (else the first
// overall) is created holding an empty document.
//
// A failed Initialize leaves the store uninitialized and is retryable.
func (s *Store[T]) Initialize(paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Load() != nil {
		return nil
	}

	candidates := paths
	if len(candidates) == 0 {
		var probe T
		candidates = probe.DefaultPaths()
	}
	if len(candidates) == 0 {
		return errors.New("config: no candidate paths")
	}

	path, exists := selectConfigFile(candidates)
	if !exists {
		if err := seedConfigFile(path); err != nil {
			return err
		}
		s.logger.Info("created default config file", "path", path)
	}

	cfg, raw, err := decodeFile[T](path)
	if err != nil {
		s.logger.Warn("initial config load failed, store stays uninitialized", "path", path, "error", err)
		return err
	}

	w, err := watcher.NewWithOptions(path, s.wopts, s)
	if err != nil {
		s.logger.Error("could not watch config file, changes will not be picked up", "path", path, "error", err)
	} else {
		s.watch = w
		go w.Run()
	}

	s.current.Store(&cfg)
	s.appendHistory(s.history, path, raw)
	s.logger.Info("config loaded", "path", path)
	return nil
}

// Reload implements ports.Reloadable; the owned watcher invokes it on every
// detected change-burst. Failures keep the active value and are logged. The
// watcher can fire twice for one logical write when timing is perfect, so
// reload stays idempotent: equal content never re-notifies.
func (s *Store[T]) Reload() {
	if err := s.TryReload(); err != nil {
		s.logger.Warn("config reload failed, keeping active configuration", "error", err)
	}
}

// TryReload re-parses the watched file. On decode failure the active value is
// untouched and the error returned. When the new value is structurally equal
// to the active one, nothing happens. Otherwise the value is swapped
// atomically and every registered subscriber is notified synchronously, in
// unspecified order, each isolated from the others' panics.
func (s *Store[T]) TryReload() error {
	s.mu.Lock()
	w := s.watch
	s.mu.Unlock()
	if w == nil {
		return ErrNotWatching
	}

	// Parse outside the swap lock: a slow read must not block Get-side
	// swaps or subscriber bookkeeping.
	cfg, raw, err := decodeFile[T](w.File())
	if err != nil {
		return err
	}

	s.mu.Lock()
	if cur := s.current.Load(); cur != nil && cfg.Equal(*cur) {
		s.mu.Unlock()
		return nil
	}
	s.current.Store(&cfg)
	subs := make([]ports.Reloadable, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	s.record(w.File(), raw)
	s.logger.Info("config changed", "path", w.File())
	for _, sub := range subs {
		s.safeNotify(sub)
	}
	return nil
}

// RegisterSubscriber adds a subscriber notified after each accepted change.
func (s *Store[T]) RegisterSubscriber(sub ports.Reloadable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[sub] = struct{}{}
}

// UnregisterSubscriber removes a subscriber, reporting whether it was
// registered.
func (s *Store[T]) UnregisterSubscriber(sub ports.Reloadable) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subscribers[sub]
	delete(s.subscribers, sub)
	return ok
}

// Close tears down the owned watcher. The active value stays readable; the
// store simply stops tracking the file. Safe to call multiple times.
func (s *Store[T]) Close() error {
	s.mu.Lock()
	w := s.watch
	s.watch = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

// DisableHistory stops recording generations from now on. Generations already
// recorded (including the initial load's) are left in place.
func (s *Store[T]) DisableHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

// record appends an accepted generation to history, if recording is enabled.
// Must be called without mu held.
func (s *Store[T]) record(path string, raw []byte) {
	s.mu.Lock()
	h := s.history
	s.mu.Unlock()
	s.appendHistory(h, path, raw)
}

func (s *Store[T]) appendHistory(h ports.History, path string, raw []byte) {
	if h == nil {
		return
	}
	gen := ports.Generation{Source: path, Raw: raw, AcceptedAt: time.Now()}
	if _, err := h.Append(s.name, gen); err != nil {
		s.logger.Warn("could not record config generation", "error", err)
	}
}

// safeNotify invokes one subscriber, keeping its panic from starving the
// remaining subscribers.
func (s *Store[T]) safeNotify(sub ports.Reloadable) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("config subscriber panicked", "panic", r)
		}
	}()
	sub.Reload()
}
