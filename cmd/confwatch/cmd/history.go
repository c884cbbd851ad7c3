package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/confwatch/internal/adapters/bbolt"
	"github.com/corey/confwatch/internal/app"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List accepted configuration generations",
	Long:  "Reads the embedded history database and prints every configuration generation the store has accepted, oldest first.",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	root := flagRoot
	if root == "" {
		root = app.DefaultRoot()
	}
	paths := app.NewPaths(root)

	h, err := bbolt.NewHistory(paths.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer h.Close()

	gens, err := h.List(app.SettingsStoreName)
	if err != nil {
		return err
	}
	if len(gens) == 0 {
		fmt.Println("no generations recorded")
		return nil
	}

	for _, gen := range gens {
		fmt.Printf("#%d  %s  %s\n", gen.Seq, gen.AcceptedAt.Format("2006-01-02 15:04:05"), gen.Source)
		raw := strings.TrimRight(string(gen.Raw), "\n")
		for _, line := range strings.Split(raw, "\n") {
			fmt.Printf("    %s\n", line)
		}
	}
	return nil
}
