package cmd

import "github.com/crytic/stylus-replay/config"

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = config.DefaultConfigFile

// TxFlagDescription describes the --tx flag shared by the trace and replay commands.
const TxFlagDescription = "hash of the transaction to trace"
