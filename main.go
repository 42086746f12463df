// Package main is the entry point for the seismic waveform deduplication gateway.
package main

import (
	"fmt"
	"os"

	"github.com/uofuseismo/deduplicator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
