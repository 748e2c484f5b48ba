package logging

// These constants are used to identify the various services that may do some logging
const (
	// CLI_SERVICE is the constant used to identify the cmd package
	CLI_SERVICE = "cli"
	// TRACE_SERVICE is the constant used to identify the trace acquisition and parsing package
	TRACE_SERVICE = "trace"
	// REPLAY_SERVICE is the constant used to identify the replay harness
	REPLAY_SERVICE = "replay"
	// COMPILATION_SERVICE is the constant used to identify the compilation package
	COMPILATION_SERVICE = "compilation"
	// CHAIN_SERVICE is the constant used to identify the RPC provider
	CHAIN_SERVICE = "chain"
)
