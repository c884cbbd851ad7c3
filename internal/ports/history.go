package ports

import "time"

// Generation is one accepted configuration value, as raw file bytes, recorded
// at the moment the store swapped it in.
type Generation struct {
	// Seq is the monotonically increasing generation number, assigned by the
	// history store. Seq 1 is the initial load.
	Seq uint64 `json:"seq"`
	// Source is the file path the generation was decoded from.
	Source string `json:"source"`
	// Raw is the file content that produced the accepted value.
	Raw []byte `json:"raw"`
	// AcceptedAt is when the store swapped the value in.
	AcceptedAt time.Time `json:"accepted_at"`
}

// History records accepted configuration generations to durable storage.
// Appends are transactional: a crash mid-append must not corrupt previously
// committed generations. A nil History on a store disables recording.
type History interface {
	// Append records one generation under the named store and returns its
	// assigned sequence number.
	Append(store string, gen Generation) (uint64, error)

	// List returns all recorded generations for the named store, oldest
	// first. Returns an empty slice if none exist.
	List(store string) ([]Generation, error)

	// Close releases the backing storage.
	Close() error
}
