// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is the release version of the gateway.
const Version = "1.1.0"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deduplicator",
	Short: "Deduplicator - real-time seismic waveform deduplication gateway",
	Long: `The deduplicator reads TraceBuf2 data from an Earthworm ring and attempts
to only pass-on sanitized data by:
  1. Removing future data.
  2. Removing very old data.
  3. Removing duplicate data.
The sanitized data is then dumped onto a ring.

    deduplicator start --ini=deduplicator.ini`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
