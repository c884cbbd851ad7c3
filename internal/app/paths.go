package app

import (
	"os"
	"path/filepath"
)

// Paths holds the resolved filesystem locations confwatch uses. All fields
// are pre-computed strings.
type Paths struct {
	Root       string // <config dir>/confwatch/
	ConfigJSON string // <config dir>/confwatch/confwatch.json
	ConfigYAML string // <config dir>/confwatch/confwatch.yaml
	HistoryDB  string // <config dir>/confwatch/history.db
}

// NewPaths constructs all resolved paths under root.
func NewPaths(root string) *Paths {
	return &Paths{
		Root:       root,
		ConfigJSON: filepath.Join(root, "confwatch.json"),
		ConfigYAML: filepath.Join(root, "confwatch.yaml"),
		HistoryDB:  filepath.Join(root, "history.db"),
	}
}

// DefaultRoot resolves the per-user confwatch directory, falling back to a
// local dot-directory when the platform config dir is unavailable.
func DefaultRoot() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".confwatch"
	}
	return filepath.Join(base, "confwatch")
}
