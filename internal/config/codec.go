// Package config owns the current decoded configuration value for a process
// and keeps it synchronized with a file on disk. The Store drives initial
// load, file watching, and equality-suppressed reloads; the codec in this
// file turns raw file bytes into a typed value, dispatching on file suffix.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for file suffixes the codec cannot decode.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

// emptyDocument is what gets seeded into a created-on-demand config file. An
// empty JSON object is also a valid empty YAML mapping, so it parses under
// either arm of the codec.
const emptyDocument = "{}\n"

// decodeFile reads and decodes path into a fresh T, selecting the format by
// suffix: .json is JSON, .yml/.yaml is YAML, anything else fails. The raw
// bytes are returned alongside the value for history recording.
func decodeFile[T any](path string) (T, []byte, error) {
	var cfg T

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	default:
		return cfg, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	return cfg, data, nil
}

// selectConfigFile picks the file Initialize should load: the first candidate
// that exists, or — when none exist — the first JSON-suffixed candidate
// (falling back to the first overall) as the place to seed a default file.
func selectConfigFile(candidates []string) (path string, exists bool) {
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, true
		}
	}
	for _, c := range candidates {
		if strings.EqualFold(filepath.Ext(c), ".json") {
			return c, false
		}
	}
	return candidates[0], false
}

// seedConfigFile creates path containing an empty document so a well-formed
// empty configuration can be parsed from it.
func seedConfigFile(path string) error {
	if err := os.WriteFile(path, []byte(emptyDocument), 0644); err != nil {
		return fmt.Errorf("seed config file: %w", err)
	}
	return nil
}
