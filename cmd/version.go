package cmd

import (
	"fmt"

	"github.com/crytic/stylus-replay/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command that displays build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Long: `Print the release of stylus-replay along with the commit and Go version it was built from. With --short,
only the release and abbreviated commit are printed`,
	Args: cmdValidateNoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, err := cmd.Flags().GetBool("short")
		if err != nil {
			return err
		}
		info := version.GetInfo()
		if short {
			fmt.Println(info.Short())
			return nil
		}
		fmt.Print(info.String())
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print the version on a single line")
	rootCmd.AddCommand(versionCmd)
}
