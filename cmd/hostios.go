package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crytic/stylus-replay/replay"
	"github.com/crytic/stylus-replay/trace"
	"github.com/spf13/cobra"
)

// hostiosCmd represents the command provider for listing the host calls the decoder and the replay runtime know
var hostiosCmd = &cobra.Command{
	Use:   "hostios",
	Short: "Lists the supported host calls",
	Long: `Lists every host call the trace decoder knows, with the layout of its recorded args and outs, followed by
the wasm imports the replay runtime provides`,
	Args:              cmdValidateNoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunHostios,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	hostiosCmd.Flags().Bool("imports", false, "only list the wasm imports provided by the replay runtime")
	rootCmd.AddCommand(hostiosCmd)
}

// cmdRunHostios executes the CLI hostios command
func cmdRunHostios(cmd *cobra.Command, args []string) error {
	importsOnly, err := cmd.Flags().GetBool("imports")
	if err != nil {
		return err
	}
	if !importsOnly {
		writeSchemas(os.Stdout, trace.Schemas())
		fmt.Println()
	}
	for _, name := range replay.SupportedImports() {
		fmt.Println(name)
	}
	return nil
}

// writeSchemas writes one line per hostio kind: its name, its args layout and its outs layout.
func writeSchemas(w io.Writer, schemas []*trace.KindSchema) {
	for _, schema := range schemas {
		line := fmt.Sprintf("%-24s args(%s) outs(%s)", schema.Name, schema.Layout(trace.BufferArgs), schema.Layout(trace.BufferOuts))
		if schema.Frame != nil {
			line += " frame"
		}
		if schema.Legacy {
			line += " [legacy]"
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}
