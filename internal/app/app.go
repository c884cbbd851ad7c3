// Package app wires the config store, file watcher, and history adapters
// into the confwatch daemon, and defines the daemon's own Settings shape.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/corey/confwatch/internal/adapters/bbolt"
	"github.com/corey/confwatch/internal/config"
	"github.com/corey/confwatch/internal/ports"
)

// SettingsStoreName namespaces the daemon's own generations in history.
const SettingsStoreName = "settings"

// Options configure a fully wired App.
type Options struct {
	// Root overrides the confwatch directory (default: platform config dir).
	Root string
	// ConfigFile, when set, is watched instead of the default candidates.
	ConfigFile string
	// NoHistory disables the embedded history database entirely.
	NoHistory bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// App is the wired confwatch daemon: one hot-reloading settings store plus
// its history database.
type App struct {
	Paths    *Paths
	Settings *config.Store[Settings]

	configFile string
	history    ports.History
	logger     *slog.Logger
}

// New creates a fully wired App. The confwatch directory is created if
// missing. A history database that cannot be opened degrades to no recording
// rather than failing startup.
func New(opts Options) (*App, error) {
	root := opts.Root
	if root == "" {
		root = DefaultRoot()
	}
	paths := NewPaths(root)
	if err := os.MkdirAll(paths.Root, 0755); err != nil {
		return nil, fmt.Errorf("create confwatch dir: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var history ports.History
	if !opts.NoHistory {
		h, err := bbolt.NewHistory(paths.HistoryDB)
		if err != nil {
			logger.Warn("history database unavailable, generations will not be recorded", "error", err)
		} else {
			history = h
		}
	}

	store := config.NewStore[Settings](config.Options{
		Name:    SettingsStoreName,
		History: history,
		Logger:  logger,
	})

	return &App{
		Paths:      paths,
		Settings:   store,
		configFile: opts.ConfigFile,
		history:    history,
		logger:     logger,
	}, nil
}

// Start loads the settings file and begins watching it. Honors the
// record_history setting from the loaded file.
func (a *App) Start() error {
	var err error
	if a.configFile != "" {
		err = a.Settings.Initialize(a.configFile)
	} else {
		err = a.Settings.Initialize()
	}
	if err != nil {
		return err
	}

	if s, ok := a.Settings.Get(); ok && !s.ShouldRecordHistory() {
		a.Settings.DisableHistory()
	}
	return nil
}

// History exposes the generation log, or nil when disabled.
func (a *App) History() ports.History {
	return a.history
}

// Stop tears down the watcher and closes the history database.
func (a *App) Stop() error {
	err := a.Settings.Close()
	if a.history != nil {
		if cerr := a.history.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
