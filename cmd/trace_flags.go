package cmd

import (
	"fmt"

	"github.com/crytic/stylus-replay/trace"
	"github.com/spf13/cobra"
)

// addTraceFlags adds the various flags for the trace command
func addTraceFlags() error {
	addCommonFlags(traceCmd)

	// Transaction
	traceCmd.Flags().String("tx", "", TxFlagDescription)

	// Output
	addOutputFlags(traceCmd)

	// Verification
	traceCmd.Flags().Bool("verify", false, "check recorded math, keccak and ink values for internal consistency")
	return nil
}

// addOutputFlags adds the --format and --out flags of commands that print a trace
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", string(trace.FormatJSON), fmt.Sprintf("output format, one of %v", trace.Formats))
	cmd.Flags().String("out", "", "path of the file to write the trace to instead of stdout")
}

// getFormatFlag parses the --format flag
func getFormatFlag(cmd *cobra.Command) (trace.Format, error) {
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	return trace.ParseFormat(formatStr)
}
