// confwatch keeps a typed configuration synchronized with a file on disk.
// Single binary — watch a config file live, inspect the active value, and
// browse accepted generations.
package main

import (
	"os"

	"github.com/corey/confwatch/cmd/confwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
