package cmd

import (
	"github.com/crytic/stylus-replay/trace"
	"github.com/spf13/cobra"
)

// simulateCmd represents the command provider for tracing a call that is not mined
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Prints the host call trace of a simulated call",
	Long: `Traces a call against the latest block with debug_traceCall and prints the decoded host call trace. The
call is never sent to the network`,
	Args:              cmdValidateNoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunSimulate,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the simulate command
	err := addSimulateFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the simulate command", err)
	}

	// Add the simulate command and its associated flags to the root command
	rootCmd.AddCommand(simulateCmd)
}

// cmdRunSimulate executes the CLI simulate command
func cmdRunSimulate(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd, nil)
	if err != nil {
		return handleError("run the simulate command", err)
	}

	call, err := getCallArgsFromFlags(cmd)
	if err != nil {
		return handleError("run the simulate command", err)
	}
	format, err := getFormatFlag(cmd)
	if err != nil {
		return handleError("run the simulate command", err)
	}
	tracer, err := projectConfig.TracerOptions()
	if err != nil {
		return handleError("run the simulate command", err)
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

	t, err := trace.Simulate(ctx, provider, call, tracer, projectConfig.ParseOptions())
	if err != nil {
		return handleError("simulate transaction", err)
	}

	out, err := t.Export(format)
	if err != nil {
		return handleError("export the trace", err)
	}
	return handleError("write the trace", writeOutput(cmd, out, format))
}
