package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/crytic/stylus-replay/cmd/exitcodes"
	"github.com/crytic/stylus-replay/compilation"
	"github.com/crytic/stylus-replay/config"
	"github.com/crytic/stylus-replay/logging/colors"
	"github.com/crytic/stylus-replay/logging/formatters"
	"github.com/crytic/stylus-replay/replay"
	"github.com/crytic/stylus-replay/trace"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// replayCmd represents the command provider for replaying a transaction
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replays a Stylus transaction against its recorded trace",
	Long: `Traces a mined transaction, builds the Stylus project and runs the program locally, answering each of its
host calls from the trace. Unless disabled, the replay is re-executed under a debugger that stops right before the
program starts`,
	Args:              cmdValidateNoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunReplay,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the replay command
	err := addReplayFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the replay command", err)
	}

	// Add the replay command and its associated flags to the root command
	rootCmd.AddCommand(replayCmd)
}

// cmdRunReplay executes the CLI replay command. Unless this process is the child of a debugger, it first looks for a
// debugger and, if one is found, re-executes itself under it.
func cmdRunReplay(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd, updateProjectConfigWithReplayFlags)
	if err != nil {
		return handleError("run the replay command", err)
	}

	hash, err := getTxHashFlag(cmd)
	if err != nil {
		return handleError("run the replay command", err)
	}
	address, err := getAddressFlag(cmd, "address")
	if err != nil {
		return handleError("run the replay command", err)
	}

	child, err := cmd.Flags().GetBool(replay.ChildFlag[2:])
	if err != nil {
		return handleError("run the replay command", err)
	}
	if !child {
		debugger, err := replay.ResolveDebugger(projectConfig.Replay.Debugger, nil)
		if err != nil {
			return handleError("run the replay command", err)
		}
		if debugger != "" {
			return runUnderDebugger(debugger)
		}
		if projectConfig.Replay.Debugger != replay.DebuggerNone {
			cmdLogger.Warn("No debugger found (tried ", replay.DebuggerFallbacks, "), replaying without one")
		}
	}

	tracer, err := projectConfig.TracerOptions()
	if err != nil {
		return handleError("run the replay command", err)
	}

	ctx, stop := commandContext()
	defer stop()
	requestCtx, cancelRequests := requestContext(ctx, projectConfig)
	defer cancelRequests()

	provider, err := newProvider(requestCtx, projectConfig)
	if err != nil {
		return handleError("connect to the node", err)
	}
	defer provider.Close()

	t, err := trace.Fetch(requestCtx, provider, hash, tracer, projectConfig.ParseOptions())
	if err != nil {
		return handleError("trace tx", err)
	}
	cancelRequests()
	target, err := replay.ResolveTarget(t, address)
	if err != nil {
		return handleError("replay tx", err)
	}

	wasm, err := loadProgram(ctx, projectConfig)
	if err != nil {
		return handleError("build the project", err)
	}

	session := replay.NewSession(target.Frame)
	session.Console = os.Stdout
	result, err := replay.Run(ctx, session, wasm, target.ArgsLen)
	if projectConfig.Replay.InkSummary && session.Ledger().Calls() > 0 {
		inkPrice, _ := replay.RecordedInkPrice(t.TopFrame)
		fmt.Println(session.Ledger().String(inkPrice))
	}
	if err != nil {
		return handleError("replay tx", err)
	}

	return reportResult(result)
}

// runUnderDebugger re-executes this process under debugger and exits with its exit code.
func runUnderDebugger(debugger string) error {
	executable, err := os.Executable()
	if err != nil {
		return handleError("locate the executable", err)
	}

	debuggerCmd, script, err := replay.DebuggerCommand(debugger, executable, os.Args[1:])
	if err != nil {
		return handleError("start the debugger", err)
	}
	if script != "" {
		defer os.Remove(script)
	}

	cmdLogger.Info("Replaying under ", colors.Bold, debugger, colors.Reset)
	err = debuggerCmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The child has already reported why it failed
		return exitcodes.NewErrorWithExitCode(nil, exitErr.ExitCode())
	}
	if err != nil {
		return handleError("run "+debugger, err)
	}
	return nil
}

// loadProgram returns the program to replay: the configured prebuilt program, or the output of building the project.
// The program's hash is compared against the last replayed program to flag stale builds.
func loadProgram(ctx context.Context, projectConfig *config.ProjectConfig) ([]byte, error) {
	path := projectConfig.Project.WasmPath
	if path == "" {
		var err error
		path, err = projectConfig.Project.Build(ctx)
		if err != nil {
			return nil, err
		}
	}

	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cmdLogger.Info("Loaded ", colors.Bold, path, colors.Reset, " (", len(wasm), " bytes)")
	compilation.NotifyArtifactHashStatus(wasm, filepath.Dir(path), cmdLogger)
	return wasm, nil
}

// reportResult prints the result of a replay the way the call is reported onchain. Anything but a success is mapped
// to ExitCodeReverted.
func reportResult(result *replay.Result) error {
	var tag string
	switch result.Outcome {
	case replay.OutcomeSuccess:
		tag = "[success]"
	case replay.OutcomeRevert:
		tag = "[revert]"
	default:
		tag = fmt.Sprintf("[exit (%d)]", result.Status)
	}
	fmt.Println(formatters.ReplayReportFormatter(tag + " " + result.String()))
	if len(result.ReturnData) > 0 {
		fmt.Println("return data:", hexutil.Encode(result.ReturnData))
	}

	if result.Outcome != replay.OutcomeSuccess {
		return exitcodes.NewErrorWithExitCode(nil, exitcodes.ExitCodeReverted)
	}
	return nil
}
