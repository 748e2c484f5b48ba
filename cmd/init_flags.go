package cmd

import (
	"github.com/crytic/stylus-replay/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() error {
	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file")

	// RPC endpoint
	initCmd.Flags().String("endpoint", "", "RPC endpoint of a Nitro node with the debug namespace enabled")

	// Project path
	initCmd.Flags().String("project", "", "path of the Stylus project to build")

	return nil
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to the init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the endpoint
	if cmd.Flags().Changed("endpoint") {
		projectConfig.RPC.Endpoint, err = cmd.Flags().GetString("endpoint")
		if err != nil {
			return err
		}
	}

	// Update the project path
	if cmd.Flags().Changed("project") {
		projectConfig.Project.ProjectPath, err = cmd.Flags().GetString("project")
		if err != nil {
			return err
		}
	}
	return nil
}
