// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// Reloadable is a capability: "can be told, with no arguments, that the thing
// you care about changed." The file watcher notifies Reloadables when the
// watched file changes; the config store notifies them when the active
// configuration actually swapped. A store is itself Reloadable, so stores
// compose as subscribers of watchers or of other stores.
//
// Reload may be invoked from the watcher's goroutine or from any caller;
// implementations must be safe under concurrent invocation. Subscriber sets
// are keyed by identity, so implementations must have a comparable dynamic
// type (a pointer receiver type is the usual choice).
type Reloadable interface {
	Reload()
}

// Config is the capability contract a concrete configuration shape must
// satisfy to be managed by a store. T is the shape itself (value type with
// value receivers), so Equal is typed rather than interface{}-shaped.
type Config[T any] interface {
	// DefaultPaths returns the ordered candidate file locations to try when
	// the store is initialized without explicit paths. Multiple entries allow
	// multiple serialization formats (e.g. config.json then config.yaml).
	DefaultPaths() []string

	// Equal reports field-wise structural equality against another value of
	// the same shape. The store suppresses subscriber notification when a
	// re-decoded value is Equal to the active one, so this must compare
	// content, never identity.
	Equal(other T) bool
}
