package replay

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/crytic/stylus-replay/utils"
	"github.com/pkg/errors"
)

// Debugger names accepted in the replay configuration.
const (
	// DebuggerAuto selects the first debugger found in DebuggerFallbacks.
	DebuggerAuto = "auto"
	// DebuggerNone replays in-process without a debugger.
	DebuggerNone = "none"
	// DebuggerDelve is the Go debugger.
	DebuggerDelve = "dlv"
	// DebuggerGDB is the GNU debugger.
	DebuggerGDB = "gdb"
	// DebuggerLLDB is the LLVM debugger.
	DebuggerLLDB = "lldb"
	// DebuggerRustGDB is gdb started with the Rust pretty printers loaded.
	DebuggerRustGDB = "rust-gdb"
	// DebuggerRustLLDB is lldb started with the Rust pretty printers loaded.
	DebuggerRustLLDB = "rust-lldb"
)

// DebuggerFallbacks is the order in which debuggers are tried when DebuggerAuto is selected.
var DebuggerFallbacks = []string{DebuggerRustGDB, DebuggerRustLLDB, DebuggerDelve, DebuggerGDB, DebuggerLLDB}

// ChildFlag marks the re-executed process running under the debugger.
const ChildFlag = "--child"

// EntrySymbol is the function the debugger stops at before the program starts executing. From there the session, its
// recording and every host call shim can be stepped through and inspected.
const EntrySymbol = "github.com/crytic/stylus-replay/replay.Run"

// IsValidDebugger reports whether name is an accepted debugger setting. Empty means DebuggerAuto.
func IsValidDebugger(name string) bool {
	switch name {
	case "", DebuggerAuto, DebuggerNone, DebuggerDelve, DebuggerGDB, DebuggerLLDB, DebuggerRustGDB, DebuggerRustLLDB:
		return true
	default:
		return false
	}
}

/*
ResolveDebugger returns the debugger executable to use for the given setting. An empty result means the replay runs
without a debugger: either none was requested, or none of the fallbacks is installed. An explicitly requested
debugger that is not installed is an error.
*/
func ResolveDebugger(setting string, exists func(string) bool) (string, error) {
	if exists == nil {
		exists = utils.CommandExists
	}
	switch setting {
	case DebuggerNone:
		return "", nil
	case DebuggerAuto, "":
		for _, candidate := range DebuggerFallbacks {
			if exists(candidate) {
				return candidate, nil
			}
		}
		return "", nil
	default:
		if !IsValidDebugger(setting) {
			return "", errors.Errorf("unknown debugger %q", setting)
		}
		if !exists(setting) {
			return "", errors.Errorf("debugger %s is not installed", setting)
		}
		return setting, nil
	}
}

/*
DebuggerCommand builds the command that re-executes executable with args under debugger. A breakpoint is set on
EntrySymbol and ChildFlag is appended so that the child replays instead of spawning another debugger. Delve reads its
commands from an init script, whose path is returned so the caller can remove it once the debugger exits.
*/
func DebuggerCommand(debugger string, executable string, args []string) (*exec.Cmd, string, error) {
	childArgs := append(append([]string{}, args...), ChildFlag)

	var cmd *exec.Cmd
	var script string
	switch debugger {
	case DebuggerDelve:
		file, err := os.CreateTemp("", "stylus-replay-*.dlv")
		if err != nil {
			return nil, "", errors.WithStack(err)
		}
		script = file.Name()
		_, err = fmt.Fprintf(file, "break %s\ncontinue\n", EntrySymbol)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return nil, "", errors.WithStack(err)
		}
		cmd = exec.Command(DebuggerDelve, append([]string{"exec", executable, "--init", script, "--"}, childArgs...)...)
	case DebuggerGDB, DebuggerRustGDB:
		gdbArgs := []string{"--quiet", "-ex=set breakpoint pending on", "-ex=b " + EntrySymbol, "-ex=r", "--args", executable}
		cmd = exec.Command(debugger, append(gdbArgs, childArgs...)...)
	case DebuggerLLDB, DebuggerRustLLDB:
		lldbArgs := []string{"-o", "breakpoint set --name " + EntrySymbol, "-o", "run", "--", executable}
		cmd = exec.Command(debugger, append(lldbArgs, childArgs...)...)
	default:
		return nil, "", errors.Errorf("unknown debugger %q", debugger)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, script, nil
}
