package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/stylus-replay/config"
	"github.com/crytic/stylus-replay/logging/colors"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// initCmd represents the command provider for init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Writes a project configuration with the default settings",
	Long: `Writes a stylus-replay.json with the default settings to the working directory, or to the path given with
--out. Flags given to init are stored in the new configuration`,
	Args:              cmdValidateNoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunInit,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add flags to init command
	err := addInitFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the init command", err)
	}

	// Add the init command and its associated flags to the root command
	rootCmd.AddCommand(initCmd)
}

// cmdRunInit executes the init CLI command
func cmdRunInit(cmd *cobra.Command, args []string) error {
	outputPath, err := initOutputPath(cmd)
	if err != nil {
		return handleError("run the init command", err)
	}

	projectConfig := config.GetDefaultProjectConfig()
	if err = updateProjectConfigWithInitFlags(cmd, projectConfig); err != nil {
		return handleError("run the init command", err)
	}

	if _, err = os.Stat(outputPath); err == nil {
		overwrite, err := confirmOverwrite(os.Stdin, os.Stdout, outputPath)
		if err != nil {
			return handleError("read the confirmation", err)
		}
		if !overwrite {
			fmt.Println("Operation canceled.")
			return nil
		}
	}

	if err = projectConfig.WriteToFile(outputPath); err != nil {
		return handleError("write the project configuration", err)
	}
	cmdLogger.Info("Project configuration successfully output to: ", colors.Bold, outputPath, colors.Reset)

	// The project is only built by replay, so a missing manifest is not an error yet
	if err = projectConfig.Project.Validate(); err != nil {
		cmdLogger.Warn("The configured project cannot be built yet: ", err)
	}
	return nil
}

// initOutputPath returns the absolute path the configuration is written to: --out if given, else stylus-replay.json
// in the working directory.
func initOutputPath(cmd *cobra.Command) (string, error) {
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return "", err
	}
	if outputPath == "" {
		outputPath = DefaultProjectConfigFilename
	}
	absolutePath, err := filepath.Abs(outputPath)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return absolutePath, nil
}

// confirmOverwrite asks whether the existing file at path may be replaced. Only "y" or "yes" confirm.
func confirmOverwrite(in io.Reader, out io.Writer, path string) (bool, error) {
	fmt.Fprintf(out, "%s already exists. Overwrite? (y/n): ", path)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.WithStack(err)
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
