package replay

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installed(names ...string) func(string) bool {
	return func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
}

// TestResolveDebugger checks the fallback chain and explicit debugger selection.
func TestResolveDebugger(t *testing.T) {
	tests := []struct {
		name      string
		setting   string
		installed []string
		want      string
		wantErr   bool
	}{
		{"auto prefers rust-gdb", DebuggerAuto, []string{"gdb", "dlv", "rust-lldb", "rust-gdb"}, DebuggerRustGDB, false},
		{"auto falls back to rust-lldb", DebuggerAuto, []string{"gdb", "dlv", "rust-lldb"}, DebuggerRustLLDB, false},
		{"auto falls back to delve", DebuggerAuto, []string{"gdb", "dlv"}, DebuggerDelve, false},
		{"auto falls back to gdb", DebuggerAuto, []string{"gdb", "lldb"}, DebuggerGDB, false},
		{"auto falls back to lldb", "", []string{"lldb"}, DebuggerLLDB, false},
		{"auto without debuggers", DebuggerAuto, nil, "", false},
		{"none", DebuggerNone, []string{"dlv"}, "", false},
		{"explicit", DebuggerLLDB, []string{"dlv", "lldb"}, DebuggerLLDB, false},
		{"explicit rust-lldb", DebuggerRustLLDB, []string{"rust-gdb", "rust-lldb"}, DebuggerRustLLDB, false},
		{"explicit missing", DebuggerGDB, []string{"dlv"}, "", true},
		{"unknown", "windbg", []string{"windbg"}, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveDebugger(tc.setting, installed(tc.installed...))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestDebuggerCommand checks that each debugger stops at the entry symbol and re-executes the child.
func TestDebuggerCommand(t *testing.T) {
	args := []string{"replay", "--tx", "0x01"}

	cmd, script, err := DebuggerCommand(DebuggerGDB, "/bin/stylus-replay", args)
	require.NoError(t, err)
	assert.Empty(t, script)
	assert.Equal(t, []string{"gdb", "--quiet", "-ex=set breakpoint pending on", "-ex=b " + EntrySymbol, "-ex=r", "--args",
		"/bin/stylus-replay", "replay", "--tx", "0x01", ChildFlag}, cmd.Args)

	cmd, _, err = DebuggerCommand(DebuggerLLDB, "/bin/stylus-replay", args)
	require.NoError(t, err)
	assert.Equal(t, ChildFlag, cmd.Args[len(cmd.Args)-1])
	assert.Contains(t, cmd.Args, "breakpoint set --name "+EntrySymbol)

	cmd, script, err = DebuggerCommand(DebuggerRustGDB, "/bin/stylus-replay", args)
	require.NoError(t, err)
	assert.Empty(t, script)
	assert.Equal(t, "rust-gdb", cmd.Args[0])
	assert.Contains(t, cmd.Args, "-ex=b "+EntrySymbol)
	assert.Equal(t, ChildFlag, cmd.Args[len(cmd.Args)-1])

	cmd, _, err = DebuggerCommand(DebuggerRustLLDB, "/bin/stylus-replay", args)
	require.NoError(t, err)
	assert.Equal(t, "rust-lldb", cmd.Args[0])
	assert.Contains(t, cmd.Args, "breakpoint set --name "+EntrySymbol)

	cmd, script, err = DebuggerCommand(DebuggerDelve, "/bin/stylus-replay", args)
	require.NoError(t, err)
	defer os.Remove(script)
	content, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, "break "+EntrySymbol+"\ncontinue\n", string(content))
	assert.Equal(t, []string{"dlv", "exec", "/bin/stylus-replay", "--init", script, "--", "replay", "--tx", "0x01", ChildFlag}, cmd.Args)

	// The caller's arguments are left untouched
	assert.Equal(t, []string{"replay", "--tx", "0x01"}, args)

	_, _, err = DebuggerCommand("windbg", "/bin/stylus-replay", args)
	assert.Error(t, err)
}
