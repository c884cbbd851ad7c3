package app

import (
	"time"
)

// Settings is confwatch's own configuration shape, managed by a
// config.Store[Settings] so the daemon hot-reloads it like any other config.
// Fields are plain values with json and yaml tags; optional fields are
// pointers so "absent" is distinguishable from an explicit zero, with
// accessor methods supplying the declared defaults. Read settings through
// the accessors, not the raw fields.
type Settings struct {
	// Enabled turns change announcements on or off. Defaults to true when
	// absent from the file.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// SettleMS is the watcher's burst-coalescing window in milliseconds.
	// Zero or absent selects the watcher default.
	SettleMS int `json:"settle_ms,omitempty" yaml:"settle_ms,omitempty"`

	// RecordHistory controls whether accepted generations are written to the
	// embedded history database. Defaults to true when absent.
	RecordHistory *bool `json:"record_history,omitempty" yaml:"record_history,omitempty"`
}

// DefaultPaths returns the candidate config files, JSON first so a seeded
// default file picks the JSON name.
func (s Settings) DefaultPaths() []string {
	paths := NewPaths(DefaultRoot())
	return []string{paths.ConfigJSON, paths.ConfigYAML}
}

// Equal reports field-wise equality, comparing optional fields by pointed-to
// value rather than pointer identity.
func (s Settings) Equal(other Settings) bool {
	return boolPtrEq(s.Enabled, other.Enabled) &&
		s.LogLevel == other.LogLevel &&
		s.SettleMS == other.SettleMS &&
		boolPtrEq(s.RecordHistory, other.RecordHistory)
}

// IsEnabled returns the Enabled value, defaulting to true when absent.
func (s Settings) IsEnabled() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// Level returns the configured log level, defaulting to info.
func (s Settings) Level() string {
	if s.LogLevel == "" {
		return "info"
	}
	return s.LogLevel
}

// SettleWindow returns the configured coalescing window, or zero to let the
// watcher pick its default.
func (s Settings) SettleWindow() time.Duration {
	if s.SettleMS <= 0 {
		return 0
	}
	return time.Duration(s.SettleMS) * time.Millisecond
}

// ShouldRecordHistory returns the RecordHistory value, defaulting to true.
func (s Settings) ShouldRecordHistory() bool {
	if s.RecordHistory == nil {
		return true
	}
	return *s.RecordHistory
}

func boolPtrEq(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
