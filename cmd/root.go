package cmd

import (
	"github.com/crytic/stylus-replay/logging"
	"github.com/crytic/stylus-replay/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stylus-replay",
	Short: "A trace and replay tool for Arbitrum Stylus transactions",
	Long: "stylus-replay acquires the host call trace of a Stylus transaction from a Nitro node and replays the " +
		"program against it, locally and under a debugger",
	Version: version.GetInfo().Short(),
}

// cmdLogger is the logger used by the cmd package. It is replaced with a sub-logger of the configured
// logging.GlobalLogger once a command has read its project configuration.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
