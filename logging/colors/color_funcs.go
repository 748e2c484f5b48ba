package colors

import "fmt"

// ColorFunc is an alias type for a coloring function that accepts anything and returns a colorized string
type ColorFunc = func(s any) string

// Reset returns the input as a string. Passed to a logger, it ends the span started by a preceding ColorFunc.
func Reset(s any) string {
	return fmt.Sprintf("%v", s)
}

// combine returns a ColorFunc applying each of the given colors in order, the last one outermost.
func combine(colors ...Color) ColorFunc {
	return func(s any) string {
		out := fmt.Sprintf("%v", s)
		for _, color := range colors {
			out = Colorize(out, color)
		}
		return out
	}
}

// The ColorFuncs used for console output. Bold variants wrap the color in BOLD.
var (
	Bold       = combine(BOLD)
	Red        = combine(RED)
	RedBold    = combine(RED, BOLD)
	GreenBold  = combine(GREEN, BOLD)
	YellowBold = combine(YELLOW, BOLD)
	BlueBold   = combine(BLUE, BOLD)
	CyanBold   = combine(CYAN, BOLD)
)
