package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/stylus-replay/chain"
	"github.com/crytic/stylus-replay/cmd/exitcodes"
	"github.com/crytic/stylus-replay/config"
	"github.com/crytic/stylus-replay/logging"
	"github.com/crytic/stylus-replay/logging/colors"
	"github.com/crytic/stylus-replay/logging/formatters"
	"github.com/crytic/stylus-replay/replay"
	"github.com/crytic/stylus-replay/trace"
	"github.com/crytic/stylus-replay/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cmdValidFlagArgs will return which flags are valid for dynamic completion for commands that take no positional
// arguments
func cmdValidFlagArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed && !flag.Hidden {
			// Include the "--" prefix so that none of the suggestions are taken as positional arguments.
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateNoArgs makes sure that there are no positional arguments provided to a command
func cmdValidateNoArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("%s does not accept any positional arguments, only flags and their associated values", cmd.Name())
		cmdLogger.Error("Failed to validate args to the "+cmd.Name()+" command", err)
		return err
	}
	return nil
}

/*
loadProjectConfig resolves the project configuration of a command and navigates through the following possibilities:
#1: We will search for either a custom config file (via --config) or the default (stylus-replay.json). If we find it,
read it. If we can't read it, throw an error.
#2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
#3: If stylus-replay.json can't be found, use the default project configuration.
Flags set on the command line are then applied with updateFlags, the result is validated and logging is configured.
*/
func loadProjectConfig(cmd *cobra.Command, updateFlags func(*cobra.Command, *config.ProjectConfig) error) (*config.ProjectConfig, error) {
	var projectConfig *config.ProjectConfig

	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If --config was not used, look for `stylus-replay.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err = config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			return nil, err
		}
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed && existenceError != nil {
		return nil, errors.WithStack(existenceError)
	}

	// Possibility #3: --config flag was not used and stylus-replay.json was not found, so use the defaults
	if !configFlagUsed && existenceError != nil {
		cmdLogger.Debug("Unable to find the config file at ", configPath, ", using the default project configuration")
		projectConfig = config.GetDefaultProjectConfig()
	}

	err = updateProjectConfigWithCommonFlags(cmd, projectConfig)
	if err != nil {
		return nil, err
	}
	if updateFlags != nil {
		err = updateFlags(cmd, projectConfig)
		if err != nil {
			return nil, err
		}
	}

	err = projectConfig.Validate()
	if err != nil {
		return nil, err
	}

	err = configureLogging(projectConfig)
	if err != nil {
		return nil, err
	}
	return projectConfig, nil
}

// configureLogging sets up logging.GlobalLogger, and the cmd package's sub-logger of it, from the logging config.
func configureLogging(projectConfig *config.ProjectConfig) error {
	if projectConfig.Logging.NoColor {
		colors.DisableColor()
	} else {
		colors.EnableColor()
	}

	logging.GlobalLogger = logging.NewLogger(projectConfig.Logging.Level, true)
	if projectConfig.Logging.LogDirectory != "" {
		file, err := logging.OpenLogFile(projectConfig.Logging.LogDirectory)
		if err != nil {
			return err
		}
		logging.GlobalLogger.AddWriter(file, logging.STRUCTURED)
	}
	cmdLogger = logging.GlobalLogger.NewSubLogger("module", logging.CLI_SERVICE)
	return nil
}

// commandContext returns a context cancelled on a keyboard interrupt. Builds and replays run under it without a
// deadline.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// requestContext derives the context for node requests from ctx, bound to the configured request timeout.
func requestContext(ctx context.Context, projectConfig *config.ProjectConfig) (context.Context, context.CancelFunc) {
	timeout := projectConfig.Timeout()
	if timeout == 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// newProvider connects to the configured node and checks that it answers.
func newProvider(ctx context.Context, projectConfig *config.ProjectConfig) (*chain.RPCProvider, error) {
	provider, err := chain.NewRPCProvider(ctx, projectConfig.RPC.Endpoint)
	if err != nil {
		return nil, err
	}
	chainID, err := provider.ChainID(ctx)
	if err != nil {
		provider.Close()
		return nil, err
	}
	cmdLogger.Debug("Connected to ", colors.Bold, projectConfig.RPC.Endpoint, colors.Reset, " (chain id ", chainID, ")")
	return provider, nil
}

// getTxHashFlag parses the required --tx flag.
func getTxHashFlag(cmd *cobra.Command) (common.Hash, error) {
	raw, err := cmd.Flags().GetString("tx")
	if err != nil {
		return common.Hash{}, err
	}
	if raw == "" {
		return common.Hash{}, errors.New("a transaction hash must be provided with --tx")
	}
	return utils.HexStringToHash(raw)
}

// getAddressFlag parses an optional address flag. Returns nil if the flag was not set.
func getAddressFlag(cmd *cobra.Command, name string) (*common.Address, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	return utils.HexStringToAddress(raw)
}

// writeOutput writes an exported trace to the file given with --out, or to stdout. Trees written to stdout are
// colorized.
func writeOutput(cmd *cobra.Command, data []byte, format trace.Format) error {
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if outputPath == "" {
		if format == trace.FormatTree {
			data = []byte(formatters.TraceTreeFormatter(string(data)))
		}
		_, err = os.Stdout.Write(data)
		if err == nil && len(data) > 0 && data[len(data)-1] != '\n' {
			_, err = fmt.Fprintln(os.Stdout)
		}
		return errors.WithStack(err)
	}
	if err = os.WriteFile(outputPath, data, 0644); err != nil {
		return errors.WithStack(err)
	}
	cmdLogger.Info("Trace written to: ", colors.Bold, outputPath, colors.Reset)
	return nil
}

/*
handleError logs err and maps it to the exit code of its class: divergences and value mismatches between the replay
and the recording use ExitCodeDivergence, everything else ExitCodeHandledError. The error is logged here so main does
not print it again.
*/
func handleError(action string, err error) error {
	if err == nil {
		return nil
	}
	cmdLogger.Error("Failed to "+action, err)

	var divergence *trace.DivergenceError
	var mismatch *replay.MismatchError
	if errors.As(err, &divergence) || errors.As(err, &mismatch) {
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeDivergence)
	}
	return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
}
