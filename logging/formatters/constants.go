package formatters

import "github.com/crytic/stylus-replay/logging/colors"

// Regexes used to find the tags of a rendered trace tree or replay report so they can be colorized for console output
const (
	// frameRegex matches the frame header tags, e.g. [call], [delegate call], [static call] or [evm call]
	frameRegex = `(\[(?:delegate |static |evm )?call\])`
	// topFrameRegex matches the root tag of a rendered trace
	topFrameRegex = `(\[(?:trace|simulation)\])`
	// createRegex matches [create1] and [create2]
	createRegex = `(\[create[12]\])`
	// storageRegex matches the storage and transient storage tags
	storageRegex = `(\[(?:storage|transient)\])`
	// logRegex matches [log] tags for emit_log and console output
	logRegex = `(\[log\])`
	// unknownRegex matches hostios that were kept as opaque blobs
	unknownRegex = `(\[unknown\])`
	// divergenceRegex matches [divergence] and [mismatch] tags in replay reports
	divergenceRegex = `(\[(?:divergence|mismatch)\])`
	// successRegex matches the successful outcome of a replay
	successRegex = `(\[success\])`
	// revertRegex matches [revert] and [exit (%v)] outcomes of a replay
	revertRegex = `(\[(?:revert|exit \(\d+\))\])`
	// inkRegex matches ink annotations, e.g. (ink 1200)
	inkRegex = `(\(ink \d+\))`
	// outputArrowRegex matches the marker placed in front of recorded outputs
	outputArrowRegex = `(\=\>)`
)

// Colors used for each tag
const (
	frameColor      = colors.BLUE
	createColor     = colors.YELLOW
	storageColor    = colors.CYAN
	logColor        = colors.MAGENTA
	unknownColor    = colors.DARK_GRAY
	divergenceColor = colors.RED
	successColor    = colors.GREEN
	revertColor     = colors.RED
	inkColor        = colors.DARK_GRAY
)
