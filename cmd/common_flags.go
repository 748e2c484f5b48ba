package cmd

import (
	"fmt"

	"github.com/crytic/stylus-replay/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// addCommonFlags adds the node, tracer and logging flags shared by every command that talks to a node
func addCommonFlags(cmd *cobra.Command) {
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	cmd.Flags().SortFlags = false

	// Config file
	cmd.Flags().String("config", "", "path to config file")

	// RPC endpoint
	cmd.Flags().String("endpoint", "",
		fmt.Sprintf("RPC endpoint of a Nitro node with the debug namespace enabled (unless a config file is provided, default is %q)", defaultConfig.RPC.Endpoint))

	// Request timeout
	cmd.Flags().Int("timeout", 0,
		fmt.Sprintf("number of seconds allowed for node requests (unless a config file is provided, default is %d). 0 means that timeout is not enforced", defaultConfig.RPC.Timeout))

	// Tracer script
	cmd.Flags().String("tracer-script", "", "path to a JavaScript tracer to use instead of the node's native stylusTracer")

	// Unknown hostios
	cmd.Flags().Bool("allow-unknown-hostios", false,
		fmt.Sprintf("keep host calls the decoder does not know instead of failing (unless a config file is provided, default is %t)", defaultConfig.Tracer.AllowUnknownHostios))

	// Log level
	cmd.Flags().String("log-level", "",
		fmt.Sprintf("log level: trace, debug, info, warn or error (unless a config file is provided, default is %q)", defaultConfig.Logging.Level))

	// Logging color
	cmd.Flags().Bool("no-color", false, "disabled colored terminal output")
}

// updateProjectConfigWithCommonFlags will update the given projectConfig with any of the flags added by addCommonFlags
func updateProjectConfigWithCommonFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the endpoint
	if cmd.Flags().Changed("endpoint") {
		projectConfig.RPC.Endpoint, err = cmd.Flags().GetString("endpoint")
		if err != nil {
			return err
		}
	}

	// Update the timeout
	if cmd.Flags().Changed("timeout") {
		projectConfig.RPC.Timeout, err = cmd.Flags().GetInt("timeout")
		if err != nil {
			return err
		}
	}

	// A tracer script disables the native tracer
	if cmd.Flags().Changed("tracer-script") {
		projectConfig.Tracer.ScriptPath, err = cmd.Flags().GetString("tracer-script")
		if err != nil {
			return err
		}
		projectConfig.Tracer.UseNativeTracer = false
	}

	// Update unknown hostio handling
	if cmd.Flags().Changed("allow-unknown-hostios") {
		projectConfig.Tracer.AllowUnknownHostios, err = cmd.Flags().GetBool("allow-unknown-hostios")
		if err != nil {
			return err
		}
	}

	// Update the log level
	if cmd.Flags().Changed("log-level") {
		levelStr, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		projectConfig.Logging.Level, err = zerolog.ParseLevel(levelStr)
		if err != nil {
			return err
		}
	}

	// Update logging color mode
	if cmd.Flags().Changed("no-color") {
		projectConfig.Logging.NoColor, err = cmd.Flags().GetBool("no-color")
		if err != nil {
			return err
		}
	}
	return nil
}
