package cmd

import (
	"fmt"

	"github.com/crytic/stylus-replay/config"
	"github.com/crytic/stylus-replay/replay"
	"github.com/spf13/cobra"
)

// addReplayFlags adds the various flags for the replay command
func addReplayFlags() error {
	defaultConfig := config.GetDefaultProjectConfig()
	addCommonFlags(replayCmd)

	// Transaction
	replayCmd.Flags().String("tx", "", "hash of the transaction to replay")

	// Frame to replay
	replayCmd.Flags().String("address", "", "replay the frame executed at this address instead of the top-level frame")

	// Project
	replayCmd.Flags().String("project", "",
		fmt.Sprintf("path of the Stylus project to build (unless a config file is provided, default is %q)", defaultConfig.Project.ProjectPath))
	replayCmd.Flags().String("package", "", "package of the cargo workspace to build")
	replayCmd.Flags().StringSlice("features", []string{}, "cargo features to enable")
	replayCmd.Flags().Bool("stable-rust", false,
		fmt.Sprintf("build with the stable toolchain instead of nightly (unless a config file is provided, default is %t)", defaultConfig.Project.StableToolchain))
	replayCmd.Flags().Bool("release", false,
		fmt.Sprintf("build with the release profile (unless a config file is provided, default is %t)", defaultConfig.Project.Release))
	replayCmd.Flags().String("wasm", "", "prebuilt wasm program to replay instead of building the project")

	// Replay
	replayCmd.Flags().String("debugger", "",
		fmt.Sprintf("debugger to replay under: auto, none, rust-gdb, rust-lldb, dlv, gdb or lldb (unless a config file is provided, default is %q)", defaultConfig.Replay.Debugger))
	replayCmd.Flags().Bool("ink-summary", false,
		fmt.Sprintf("print the ink used by each host call after the replay (unless a config file is provided, default is %t)", defaultConfig.Replay.InkSummary))

	// Whether this process is the child of a debugger
	replayCmd.Flags().Bool(replay.ChildFlag[2:], false, "whether this process is the child of a debugger")
	if err := replayCmd.Flags().MarkHidden(replay.ChildFlag[2:]); err != nil {
		return err
	}
	return nil
}

// updateProjectConfigWithReplayFlags will update the given projectConfig with any CLI arguments that were provided to
// the replay command
func updateProjectConfigWithReplayFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the project path
	if cmd.Flags().Changed("project") {
		projectConfig.Project.ProjectPath, err = cmd.Flags().GetString("project")
		if err != nil {
			return err
		}
	}

	// Update the package
	if cmd.Flags().Changed("package") {
		projectConfig.Project.Package, err = cmd.Flags().GetString("package")
		if err != nil {
			return err
		}
	}

	// Update the features
	if cmd.Flags().Changed("features") {
		projectConfig.Project.Features, err = cmd.Flags().GetStringSlice("features")
		if err != nil {
			return err
		}
	}

	// Update the toolchain
	if cmd.Flags().Changed("stable-rust") {
		projectConfig.Project.StableToolchain, err = cmd.Flags().GetBool("stable-rust")
		if err != nil {
			return err
		}
	}

	// Update the build profile
	if cmd.Flags().Changed("release") {
		projectConfig.Project.Release, err = cmd.Flags().GetBool("release")
		if err != nil {
			return err
		}
	}

	// Update the prebuilt program
	if cmd.Flags().Changed("wasm") {
		projectConfig.Project.WasmPath, err = cmd.Flags().GetString("wasm")
		if err != nil {
			return err
		}
	}

	// Update the debugger
	if cmd.Flags().Changed("debugger") {
		projectConfig.Replay.Debugger, err = cmd.Flags().GetString("debugger")
		if err != nil {
			return err
		}
	}

	// Update the ink summary
	if cmd.Flags().Changed("ink-summary") {
		projectConfig.Replay.InkSummary, err = cmd.Flags().GetBool("ink-summary")
		if err != nil {
			return err
		}
	}
	return nil
}
