package colors

import "fmt"

// enabled describes whether Colorize emits ANSI escape codes. It is set by EnableColor and DisableColor.
var enabled bool

// DisableColor turns off ANSI coloring, e.g. when output is piped or the user asked for plain output.
func DisableColor() {
	enabled = false
}

// Colorize returns the string s wrapped in ANSI code c, or s unchanged when coloring is disabled.
// Source: https://github.com/rs/zerolog/blob/4fff5db29c3403bc26dee9895e12a108aacc0203/console.go
func Colorize(s any, c Color) string {
	if !enabled {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

func init() {
	EnableColor()
}
