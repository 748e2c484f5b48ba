package cmd

import (
	"github.com/crytic/stylus-replay/cmd/exitcodes"
	"github.com/crytic/stylus-replay/logging"
	"github.com/crytic/stylus-replay/logging/colors"
	"github.com/crytic/stylus-replay/trace"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// traceCmd represents the command provider for tracing a mined transaction
var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Prints the host call trace of a Stylus transaction",
	Long: `Fetches a mined transaction from the node, traces it with debug_traceTransaction and prints the decoded
host call trace`,
	Args:              cmdValidateNoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunTrace,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the trace command
	err := addTraceFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the trace command", err)
	}

	// Add the trace command and its associated flags to the root command
	rootCmd.AddCommand(traceCmd)
}

// cmdRunTrace executes the CLI trace command
func cmdRunTrace(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd, nil)
	if err != nil {
		return handleError("run the trace command", err)
	}

	hash, err := getTxHashFlag(cmd)
	if err != nil {
		return handleError("run the trace command", err)
	}
	format, err := getFormatFlag(cmd)
	if err != nil {
		return handleError("run the trace command", err)
	}
	tracer, err := projectConfig.TracerOptions()
	if err != nil {
		return handleError("run the trace command", err)
	}

	ctx, stop := commandContext()
	defer stop()
	ctx, cancel := requestContext(ctx, projectConfig)
	defer cancel()

	provider, err := newProvider(ctx, projectConfig)
	if err != nil {
		return handleError("connect to the node", err)
	}
	defer provider.Close()

	t, err := trace.Fetch(ctx, provider, hash, tracer, projectConfig.ParseOptions())
	if err != nil {
		return handleError("trace tx", err)
	}

	out, err := t.Export(format)
	if err != nil {
		return handleError("export the trace", err)
	}
	if err = writeOutput(cmd, out, format); err != nil {
		return handleError("write the trace", err)
	}

	verify, err := cmd.Flags().GetBool("verify")
	if err != nil || !verify {
		return err
	}
	return verifyTrace(t)
}

// verifyTrace reports every internal inconsistency in a trace. Any inconsistency is a handled error.
func verifyTrace(t *trace.Trace) error {
	inconsistencies := trace.Verify(t.TopFrame)
	if len(inconsistencies) == 0 {
		cmdLogger.Info(colors.GreenBold, "Trace is consistent", colors.Reset, ": ", t.TopFrame.Count(), " hostios checked")
		return nil
	}
	report := logging.NewLogBuffer()
	report.Append(colors.YellowBold, "Found ", len(inconsistencies), " inconsistencies", colors.Reset)
	for _, inconsistency := range inconsistencies {
		report.Append("\n", colors.LEFT_ARROW, " ", inconsistency.String())
	}
	cmdLogger.Warn(report)
	err := errors.Errorf("trace has %d inconsistencies", len(inconsistencies))
	cmdLogger.Error("Failed to verify the trace", err)
	return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
}
