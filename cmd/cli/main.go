// Package main is the entry point for the effort-estimate CLI.
package main

import (
	"os"

	"effort-estimate/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
