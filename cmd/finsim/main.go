// Package main is the entry point for the finsim CLI.
package main

import (
	"os"

	"finsim/cmd/finsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
