package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/confwatch/internal/ports"
)

// testSettle keeps burst windows short so tests stay fast.
const testSettle = 20 * time.Millisecond

// fakeNotifier drives the watch loop with hand-crafted events.
type fakeNotifier struct {
	events chan ports.DirEvent
	errs   chan error

	mu     sync.Mutex
	closed bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		events: make(chan ports.DirEvent, 64),
		errs:   make(chan error, 4),
	}
}

func (f *fakeNotifier) Events() <-chan ports.DirEvent { return f.events }
func (f *fakeNotifier) Errors() <-chan error          { return f.errs }

func (f *fakeNotifier) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.events)
	close(f.errs)
	return nil
}

func (f *fakeNotifier) factory(dir string) (ports.DirNotifier, error) {
	return f, nil
}

// countingSubscriber records every Reload and signals a channel per call.
type countingSubscriber struct {
	mu    sync.Mutex
	count int
	ch    chan struct{}
}

func newCountingSubscriber() *countingSubscriber {
	return &countingSubscriber{ch: make(chan struct{}, 64)}
}

func (c *countingSubscriber) Reload() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *countingSubscriber) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// waitForReload waits up to timeout for one notification.
func waitForReload(ch <-chan struct{}, timeout time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

// newTestWatcher builds a watcher on a real temp file driven by a fake
// notifier, with Run already started.
func newTestWatcher(t *testing.T) (*FileWatcher, *fakeNotifier, *countingSubscriber, string, chan struct{}) {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(file, []byte("{}\n"), 0644))

	fake := newFakeNotifier()
	sub := newCountingSubscriber()
	w, err := NewWithOptions(file, Options{Notifier: fake.factory, Settle: testSettle}, sub)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		w.Run()
		close(done)
	}()
	return w, fake, sub, file, done
}

func TestWatcher_ConstructionArguments(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(file, []byte("{}\n"), 0644))
	sub := newCountingSubscriber()

	// Empty path.
	_, err := New("", sub)
	assert.Error(t, err)

	// Missing file.
	_, err = New(filepath.Join(dir, "missing.json"), sub)
	assert.Error(t, err)

	// Directory instead of a regular file.
	_, err = New(dir, sub)
	assert.Error(t, err)

	// No subscribers.
	_, err = New(file)
	assert.ErrorIs(t, err, ErrNoSubscribers)

	// Valid construction.
	fake := newFakeNotifier()
	w, err := NewWithOptions(file, Options{Notifier: fake.factory}, sub)
	require.NoError(t, err)
	assert.Equal(t, file, w.File())
	require.NoError(t, w.Close())
}

func TestWatcher_SiblingEventsDoNotNotify(t *testing.T) {
	w, fake, sub, file, _ := newTestWatcher(t)
	defer w.Close()

	dir := filepath.Dir(file)
	fake.events <- ports.DirEvent{Path: filepath.Join(dir, "other.json"), Op: ports.OpWrite}
	fake.events <- ports.DirEvent{Path: filepath.Join(dir, "app.json.bak"), Op: ports.OpCreate}
	fake.events <- ports.DirEvent{Path: filepath.Join(dir, "unrelated.txt"), Op: ports.OpWrite}

	assert.False(t, waitForReload(sub.ch, 10*testSettle), "sibling events must not notify")
	assert.Equal(t, 0, sub.calls())
}

func TestWatcher_CoalescesBurstIntoOneNotification(t *testing.T) {
	w, fake, sub, file, _ := newTestWatcher(t)
	defer w.Close()

	// Ten qualifying events inside one settle window.
	for i := 0; i < 10; i++ {
		fake.events <- ports.DirEvent{Path: file, Op: ports.OpWrite}
	}

	require.True(t, waitForReload(sub.ch, 2*time.Second))
	// No second notification from the same burst.
	assert.False(t, waitForReload(sub.ch, 10*testSettle))
	assert.Equal(t, 1, sub.calls())

	// A later burst is a fresh edge.
	fake.events <- ports.DirEvent{Path: file, Op: ports.OpCreate}
	require.True(t, waitForReload(sub.ch, 2*time.Second))
	assert.Equal(t, 2, sub.calls())
}

func TestWatcher_MixedBurstNotifiesOnce(t *testing.T) {
	w, fake, sub, file, _ := newTestWatcher(t)
	defer w.Close()

	dir := filepath.Dir(file)
	fake.events <- ports.DirEvent{Path: filepath.Join(dir, "noise.json"), Op: ports.OpWrite}
	fake.events <- ports.DirEvent{Path: file, Op: ports.OpWrite}
	fake.events <- ports.DirEvent{Path: file, Op: ports.OpCreate}
	fake.events <- ports.DirEvent{Path: filepath.Join(dir, "more-noise"), Op: ports.OpCreate}

	require.True(t, waitForReload(sub.ch, 2*time.Second))
	assert.False(t, waitForReload(sub.ch, 10*testSettle))
	assert.Equal(t, 1, sub.calls())
}

func TestWatcher_OverflowTreatedAsPossibleChange(t *testing.T) {
	w, fake, sub, _, _ := newTestWatcher(t)
	defer w.Close()

	fake.events <- ports.DirEvent{Op: ports.OpOverflow}

	require.True(t, waitForReload(sub.ch, 2*time.Second), "overflow must notify")
	assert.Equal(t, 1, sub.calls())
}

func TestWatcher_FacilityErrorsAreNotFatal(t *testing.T) {
	w, fake, sub, file, _ := newTestWatcher(t)
	defer w.Close()

	fake.errs <- os.ErrPermission

	// The loop keeps running and still delivers changes.
	fake.events <- ports.DirEvent{Path: file, Op: ports.OpWrite}
	require.True(t, waitForReload(sub.ch, 2*time.Second))
}

func TestWatcher_DirGoneStopsLoop(t *testing.T) {
	w, fake, sub, file, done := newTestWatcher(t)
	defer w.Close()

	// The change in the same batch is still delivered before the exit.
	fake.events <- ports.DirEvent{Path: file, Op: ports.OpWrite}
	fake.events <- ports.DirEvent{Path: filepath.Dir(file), Op: ports.OpDirGone}

	require.True(t, waitForReload(sub.ch, 2*time.Second))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run loop did not exit after directory went away")
	}
}

func TestWatcher_CloseUnblocksRun(t *testing.T) {
	w, _, sub, _, done := newTestWatcher(t)

	require.NoError(t, w.Close())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run loop did not exit after Close")
	}

	// Double close is safe.
	assert.NoError(t, w.Close())
	assert.Equal(t, 0, sub.calls())
}

func TestWatcher_UnregisterSubscriber(t *testing.T) {
	w, fake, sub, file, _ := newTestWatcher(t)
	defer w.Close()

	second := newCountingSubscriber()
	w.RegisterSubscriber(second)

	fake.events <- ports.DirEvent{Path: file, Op: ports.OpWrite}
	require.True(t, waitForReload(sub.ch, 2*time.Second))
	require.True(t, waitForReload(second.ch, 2*time.Second))

	assert.True(t, w.UnregisterSubscriber(second))
	assert.False(t, w.UnregisterSubscriber(second), "second unregister reports absence")

	fake.events <- ports.DirEvent{Path: file, Op: ports.OpWrite}
	require.True(t, waitForReload(sub.ch, 2*time.Second))
	assert.False(t, waitForReload(second.ch, 10*testSettle), "unregistered subscriber must not be notified")
	assert.Equal(t, 1, second.calls())
}
