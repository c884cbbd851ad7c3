// Package fsnotify implements the ports.DirNotifier interface using
// github.com/fsnotify/fsnotify. One notifier is registered on exactly one
// directory; create and write events are forwarded, removal of the directory
// itself is reported as OpDirGone, and kernel queue overflow is surfaced as a
// synthetic OpOverflow event rather than an error, so consumers can treat it
// as a possible change.
package fsnotify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/confwatch/internal/ports"
)

// Notifier implements ports.DirNotifier backed by an fsnotify watcher.
type Notifier struct {
	fw     *fsnotify.Watcher
	dir    string
	events chan ports.DirEvent
	errs   chan error
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// New registers a notifier on dir. The directory must exist.
func New(dir string) (ports.DirNotifier, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory", abs)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(abs); err != nil {
		fw.Close()
		return nil, fmt.Errorf("register %s: %w", abs, err)
	}

	n := &Notifier{
		fw:     fw,
		dir:    abs,
		events: make(chan ports.DirEvent, 16),
		errs:   make(chan error, 4),
		done:   make(chan struct{}),
	}
	go n.forward()
	return n, nil
}

// Events delivers directory events. Closed when the notifier is closed.
func (n *Notifier) Events() <-chan ports.DirEvent { return n.events }

// Errors delivers non-fatal facility errors.
func (n *Notifier) Errors() <-chan error { return n.errs }

// Close cancels the directory registration and releases fsnotify resources.
// Safe to call multiple times.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true
	close(n.done)
	return n.fw.Close()
}

// forward translates raw fsnotify traffic into port events until the
// underlying watcher or the notifier is closed.
func (n *Notifier) forward() {
	defer close(n.events)
	defer close(n.errs)

	for {
		select {
		case event, ok := <-n.fw.Events:
			if !ok {
				return
			}
			out, relevant := n.translate(event)
			if !relevant {
				continue
			}
			select {
			case n.events <- out:
			case <-n.done:
				return
			}

		case err, ok := <-n.fw.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				select {
				case n.events <- ports.DirEvent{Op: ports.OpOverflow}:
				case <-n.done:
					return
				}
				continue
			}
			select {
			case n.errs <- err:
			case <-n.done:
				return
			}

		case <-n.done:
			return
		}
	}
}

// translate maps one fsnotify event onto the port's event model.
func (n *Notifier) translate(event fsnotify.Event) (ports.DirEvent, bool) {
	if event.Name == n.dir && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		return ports.DirEvent{Path: n.dir, Op: ports.OpDirGone}, true
	}

	switch {
	case event.Has(fsnotify.Create):
		return ports.DirEvent{Path: event.Name, Op: ports.OpCreate}, true
	case event.Has(fsnotify.Write):
		return ports.DirEvent{Path: event.Name, Op: ports.OpWrite}, true
	}
	return ports.DirEvent{}, false
}
