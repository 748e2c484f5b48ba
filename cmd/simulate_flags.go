package cmd

import (
	"math/big"

	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/crytic/stylus-replay/trace"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// addSimulateFlags adds the various flags for the simulate command
func addSimulateFlags() error {
	addCommonFlags(simulateCmd)

	// Call parameters
	simulateCmd.Flags().String("from", "", "address the call is sent from")
	simulateCmd.Flags().String("to", "", "address of the program to call")
	simulateCmd.Flags().Uint64("gas", 0, "gas limit of the call. 0 lets the node choose")
	simulateCmd.Flags().String("gas-price", "", "gas price of the call, in wei (decimal or 0x-prefixed hex)")
	simulateCmd.Flags().String("value", "", "value sent with the call, in wei (decimal or 0x-prefixed hex)")
	simulateCmd.Flags().String("data", "", "calldata, as a hex string (with or without the 0x prefix)")

	// Output
	addOutputFlags(simulateCmd)
	return nil
}

// getCallArgsFromFlags builds the simulated call from the call parameter flags
func getCallArgsFromFlags(cmd *cobra.Command) (trace.CallArgs, error) {
	from, err := getAddressFlag(cmd, "from")
	if err != nil {
		return trace.CallArgs{}, err
	}
	to, err := getAddressFlag(cmd, "to")
	if err != nil {
		return trace.CallArgs{}, err
	}
	gas, err := cmd.Flags().GetUint64("gas")
	if err != nil {
		return trace.CallArgs{}, err
	}
	gasPrice, err := getBigIntFlag(cmd, "gas-price")
	if err != nil {
		return trace.CallArgs{}, err
	}
	value, err := getBigIntFlag(cmd, "value")
	if err != nil {
		return trace.CallArgs{}, err
	}

	var data []byte
	if dataStr, err := cmd.Flags().GetString("data"); err != nil {
		return trace.CallArgs{}, err
	} else if dataStr != "" {
		if !has0xPrefix(dataStr) {
			dataStr = "0x" + dataStr
		}
		if data, err = hexutil.Decode(dataStr); err != nil {
			return trace.CallArgs{}, errors.Wrap(err, "malformed --data")
		}
	}
	return trace.NewCallArgs(from, to, gas, gasPrice, value, data), nil
}

// getBigIntFlag parses an optional decimal or 0x-prefixed hex integer flag. Returns nil if the flag was not set.
func getBigIntFlag(cmd *cobra.Command, name string) (*big.Int, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil || raw == "" {
		return nil, err
	}
	value, ok := new(big.Int).SetString(raw, 0)
	if !ok || value.Sign() < 0 {
		return nil, errors.Errorf("malformed --%s %q", name, raw)
	}
	return value, nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
