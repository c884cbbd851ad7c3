package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/confwatch/internal/app"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active settings",
	Long:  "Loads the settings file once and prints the decoded value with its effective defaults.",
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := app.New(app.Options{
		Root:       flagRoot,
		ConfigFile: flagConfig,
		NoHistory:  true,
		Logger:     newLogger(),
	})
	if err != nil {
		return err
	}
	defer a.Stop()

	if err := a.Start(); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	settings, ok := a.Settings.Get()
	if !ok {
		return fmt.Errorf("no settings loaded")
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	fmt.Printf("file: %s\n", a.Settings.WatchedFile())
	fmt.Printf("raw: %s\n", data)
	fmt.Printf("effective:\n")
	fmt.Printf("  enabled:        %v\n", settings.IsEnabled())
	fmt.Printf("  log_level:      %s\n", settings.Level())
	fmt.Printf("  settle_window:  %v\n", settings.SettleWindow())
	fmt.Printf("  record_history: %v\n", settings.ShouldRecordHistory())
	return nil
}
