package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/crytic/stylus-replay/compilation"
	"github.com/crytic/stylus-replay/replay"
	"github.com/crytic/stylus-replay/trace"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultConfigFile is the project configuration file read when no --config flag is given.
const DefaultConfigFile = "stylus-replay.json"

// ProjectConfig describes how traces are acquired and how the project is rebuilt and replayed against them.
type ProjectConfig struct {
	// RPC describes the node traces are acquired from.
	RPC RPCConfig `json:"rpc"`

	// Tracer describes the tracer the node runs and how permissive parsing of its output is.
	Tracer TracerConfig `json:"tracer"`

	// Project describes the Stylus project to build for replay.
	Project ProjectBuildConfig `json:"project"`

	// Replay describes the replay harness.
	Replay ReplayConfig `json:"replay"`

	// Logging describes the configuration used for logging to file and console
	Logging LoggingConfig `json:"logging"`
}

// RPCConfig describes the node connection.
type RPCConfig struct {
	// Endpoint is the URL of a Nitro node exposing the debug namespace.
	Endpoint string `json:"endpoint"`

	// Timeout is the time in seconds allowed for fetching a trace from the node. Building and replaying the program
	// are not bound by it. Zero or a negative value disables the timeout.
	Timeout int `json:"timeout"`
}

// TracerConfig describes the tracer used for debug_traceTransaction and debug_traceCall.
type TracerConfig struct {
	// UseNativeTracer selects the node's built-in stylusTracer.
	UseNativeTracer bool `json:"useNativeTracer"`

	// ScriptPath is the path of a JavaScript tracer. Only used when UseNativeTracer is false.
	ScriptPath string `json:"scriptPath"`

	// AllowUnknownHostios keeps host calls the decoder does not know instead of failing.
	AllowUnknownHostios bool `json:"allowUnknownHostios"`
}

// ProjectBuildConfig describes the project build. Setting WasmPath skips the build and replays that program.
type ProjectBuildConfig struct {
	compilation.BuildConfig

	// WasmPath is a prebuilt program to replay instead of building the project.
	WasmPath string `json:"wasmPath"`
}

// ReplayConfig describes the replay harness.
type ReplayConfig struct {
	// Debugger is the debugger the replay is re-executed under: "auto", "none", "rust-gdb", "rust-lldb", "dlv", "gdb"
	// or "lldb".
	Debugger string `json:"debugger"`

	// InkSummary prints a per-hostio ink table after the replay.
	InkSummary bool `json:"inkSummary"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// NoColor disables colored console output
	NoColor bool `json:"noColor"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty,
	// then no log files are kept
	LogDirectory string `json:"logDirectory"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path. Values missing from the
// file keep their defaults.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	projectConfig := GetDefaultProjectConfig()
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	if p.RPC.Endpoint == "" {
		return errors.Errorf("rpc endpoint must be provided")
	}

	if !p.Tracer.UseNativeTracer && p.Tracer.ScriptPath == "" {
		return errors.Errorf("a tracer script path must be provided when the native tracer is disabled")
	}

	if !replay.IsValidDebugger(p.Replay.Debugger) {
		return errors.Errorf("unknown debugger %q, expected one of auto, none, rust-gdb, rust-lldb, dlv, gdb or lldb", p.Replay.Debugger)
	}

	if p.Logging.Level < zerolog.TraceLevel || p.Logging.Level > zerolog.Disabled {
		return errors.Errorf("invalid log level %d", p.Logging.Level)
	}
	return nil
}

// Timeout returns the node request timeout, or zero if there is none.
func (p *ProjectConfig) Timeout() time.Duration {
	if p.RPC.Timeout <= 0 {
		return 0
	}
	return time.Duration(p.RPC.Timeout) * time.Second
}

// TracerOptions resolves the tracer configuration, reading the tracer script if one is used.
func (p *ProjectConfig) TracerOptions() (trace.TracerOptions, error) {
	if p.Tracer.UseNativeTracer {
		return trace.TracerOptions{UseNative: true}, nil
	}
	script, err := os.ReadFile(p.Tracer.ScriptPath)
	if err != nil {
		return trace.TracerOptions{}, errors.Wrapf(err, "failed to read tracer script")
	}
	return trace.TracerOptions{Script: string(script)}, nil
}

// ParseOptions returns the frame parser options.
func (p *ProjectConfig) ParseOptions() trace.ParseOptions {
	return trace.ParseOptions{AllowUnknownHostios: p.Tracer.AllowUnknownHostios}
}
