//go:build windows

package colors

import (
	"os"

	"golang.org/x/sys/windows"
)

// EnableColor turns on ANSI coloring if the console attached to stdout has virtual terminal processing enabled.
func EnableColor() {
	var mode uint32
	if err := windows.GetConsoleMode(windows.Handle(os.Stdout.Fd()), &mode); err != nil {
		enabled = false
		return
	}
	enabled = mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0
}
