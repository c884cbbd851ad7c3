package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/confwatch/internal/app"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show candidate config paths and which one would be selected",
	RunE:  runPaths,
}

func runPaths(cmd *cobra.Command, args []string) error {
	root := flagRoot
	if root == "" {
		root = app.DefaultRoot()
	}
	paths := app.NewPaths(root)

	candidates := []string{paths.ConfigJSON, paths.ConfigYAML}
	if flagConfig != "" {
		candidates = []string{flagConfig}
	}

	fmt.Printf("root:    %s\n", paths.Root)
	fmt.Printf("history: %s\n", paths.HistoryDB)
	fmt.Println("candidates:")
	selected := false
	for _, c := range candidates {
		marker := " "
		if _, err := os.Stat(c); err == nil {
			if !selected {
				marker = "*"
				selected = true
			} else {
				marker = "+"
			}
		}
		fmt.Printf("  %s %s\n", marker, c)
	}
	if !selected {
		fmt.Println("  (none exist; the first JSON candidate would be created on initialize)")
	}
	return nil
}
