//go:build !windows

package colors

// EnableColor turns on ANSI coloring. Unix terminals support ANSI escape codes.
func EnableColor() {
	enabled = true
}
