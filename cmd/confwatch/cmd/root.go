package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "confwatch",
	Short: "confwatch — live-reloading typed configuration",
	Long:  "Watches a configuration file and keeps the active value synchronized, reloading only on real semantic change.",
}

var (
	flagRoot   string
	flagConfig string
	flagDebug  bool
)

// newLogger builds the process logger from the --debug flag.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "confwatch directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "f", "", "config file to watch (default: candidate paths)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(pathsCmd)
}
