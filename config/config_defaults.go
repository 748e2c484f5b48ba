package config

import (
	"github.com/crytic/stylus-replay/compilation"
	"github.com/crytic/stylus-replay/replay"
	"github.com/rs/zerolog"
)

// GetDefaultProjectConfig obtains a default configuration for a project in the working directory, tracing against a
// local Nitro dev node with its native tracer.
func GetDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		RPC: RPCConfig{
			Endpoint: "http://localhost:8547",
			Timeout:  60,
		},
		Tracer: TracerConfig{
			UseNativeTracer:     true,
			ScriptPath:          "",
			AllowUnknownHostios: false,
		},
		Project: ProjectBuildConfig{
			BuildConfig: *compilation.NewBuildConfig("."),
			WasmPath:    "",
		},
		Replay: ReplayConfig{
			Debugger:   replay.DebuggerAuto,
			InkSummary: false,
		},
		Logging: LoggingConfig{
			Level:        zerolog.InfoLevel,
			NoColor:      false,
			LogDirectory: "",
		},
	}
}
