package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/confwatch/internal/app"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the settings file and announce accepted changes",
	Long:  "Loads the settings file, watches it for modifications, and prints each accepted configuration generation until interrupted.",
	RunE:  runWatch,
}

// changePrinter announces each accepted settings generation. It re-reads the
// store on every notification; holding a decoded value across reloads would
// defeat the point.
type changePrinter struct {
	app *app.App
}

func (p *changePrinter) Reload() {
	settings, ok := p.app.Settings.Get()
	if !ok {
		return
	}
	if !settings.IsEnabled() {
		fmt.Println("config changed (announcements disabled)")
		return
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return
	}
	fmt.Printf("config changed: %s\n", data)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := app.New(app.Options{
		Root:       flagRoot,
		ConfigFile: flagConfig,
		Logger:     newLogger(),
	})
	if err != nil {
		return err
	}

	if err := a.Start(); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	a.Settings.RegisterSubscriber(&changePrinter{app: a})

	fmt.Printf("watching %s\n", a.Settings.WatchedFile())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nshutting down...")
	return a.Stop()
}
