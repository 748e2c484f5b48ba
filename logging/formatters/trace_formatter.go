package formatters

import (
	"regexp"

	"github.com/crytic/stylus-replay/logging/colors"
)

// tagColoring pairs a tag regex with the colors applied to it. Replacements are rendered on every call so that
// colors.DisableColor takes effect after package initialization.
type tagColoring struct {
	re    *regexp.Regexp
	color colors.Color
	bold  bool
}

// replace colorizes every match of the tag in msg
func (c tagColoring) replace(msg string) string {
	replacement := colors.Colorize(`$1`, c.color)
	if c.bold {
		replacement = colors.Colorize(replacement, colors.BOLD)
	}
	return c.re.ReplaceAllString(msg, replacement)
}

var traceColorings = []tagColoring{
	{regexp.MustCompile(topFrameRegex), colors.BOLD, false},
	{regexp.MustCompile(frameRegex), frameColor, true},
	{regexp.MustCompile(createRegex), createColor, true},
	{regexp.MustCompile(storageRegex), storageColor, false},
	{regexp.MustCompile(logRegex), logColor, false},
	{regexp.MustCompile(unknownRegex), unknownColor, false},
	{regexp.MustCompile(inkRegex), inkColor, false},
}

var outputArrow = regexp.MustCompile(outputArrowRegex)

var reportColorings = []tagColoring{
	{regexp.MustCompile(divergenceRegex), divergenceColor, true},
	{regexp.MustCompile(successRegex), successColor, true},
	{regexp.MustCompile(revertRegex), revertColor, true},
}

// TraceTreeFormatter colorizes the tags of a rendered trace tree for console output.
func TraceTreeFormatter(msg string) string {
	for _, c := range traceColorings {
		msg = c.replace(msg)
	}

	// Replace the output marker with a glyph
	return outputArrow.ReplaceAllString(msg, colors.Colorize(colors.DOWNWARD_LEFT_ARROW, colors.GREEN))
}

// ReplayReportFormatter colorizes the outcome and divergence tags of a replay report for console output.
func ReplayReportFormatter(msg string) string {
	for _, c := range reportColorings {
		msg = c.replace(msg)
	}
	return msg
}
