package ports

// Op classifies a directory event. Only the operations the file watcher acts
// on are modeled; the adapter folds everything else away.
type Op uint8

const (
	// OpCreate: an entry appeared in the watched directory. Atomic-replace
	// writes (write temp file, rename over target) surface as creates.
	OpCreate Op = iota
	// OpWrite: an entry in the watched directory was modified in place.
	OpWrite
	// OpOverflow: the OS dropped precise event data. The path is empty; the
	// consumer must treat this as a possible change to anything it tracks.
	OpOverflow
	// OpDirGone: the watched directory itself was removed or renamed. The
	// registration is no longer valid.
	OpDirGone
)

// DirEvent is one filesystem change observed in a watched directory.
type DirEvent struct {
	// Path is the absolute path of the affected entry. Empty for OpOverflow.
	Path string
	Op   Op
}

// DirNotifier is the OS filesystem-notification facility, registered on a
// single directory. Injectable so tests can drive the watcher loop with a
// deterministic fake instead of a real kernel queue.
type DirNotifier interface {
	// Events delivers directory events. The channel is closed when the
	// notifier is closed, which unblocks any receiver promptly.
	Events() <-chan DirEvent

	// Errors delivers non-fatal facility errors (logged by the consumer).
	Errors() <-chan error

	// Close cancels the directory registration and releases the facility.
	// Safe to call multiple times.
	Close() error
}

// NotifierFactory opens a DirNotifier registered on dir for create and write
// events. The production factory is the fsnotify adapter.
type NotifierFactory func(dir string) (DirNotifier, error)
