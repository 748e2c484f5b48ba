package replay

import (
	"fmt"
	"strings"

	"github.com/crytic/stylus-replay/trace"
	"github.com/pmezard/go-difflib/difflib"
)

// MismatchError is returned when the program passes a host call an input that differs from the recorded input.
type MismatchError struct {
	// Hostio is the recorded host call.
	Hostio trace.Hostio
	// Position is the index of the host call within the replayed frame.
	Position int
	// Field is the name of the differing input.
	Field string
	// Expected is the recorded value, rendered for display.
	Expected string
	// Actual is the value passed by the program, rendered for display.
	Actual string
	// Diff is a unified diff of the hex dumps of both values. It is only set for byte strings.
	Diff string
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("replay mismatch in %s (step %d) for %s: onchain %s, replay %s",
		e.Hostio.Name(), e.Position, e.Field, e.Expected, e.Actual)
	if e.Diff != "" {
		msg += "\n" + e.Diff
	}
	return msg
}

// MemoryAccessError is returned when a host call refers to guest memory outside of the program's linear memory.
type MemoryAccessError struct {
	// Hostio is the host call that made the access.
	Hostio string
	// Offset is the guest pointer.
	Offset uint32
	// Length is the number of bytes accessed.
	Length uint32
	// Size is the size of the linear memory at the time of the access.
	Size uint32
	// Write is true for writes.
	Write bool
}

func (e *MemoryAccessError) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("%s: out of bounds %s of %d bytes at 0x%x, memory size is %d bytes", e.Hostio, op, e.Length, e.Offset, e.Size)
}

// hexDumpWidth is the number of bytes per line in hex dumps used for diffs.
const hexDumpWidth = 32

// hexDump renders data as lines of hexDumpWidth bytes prefixed by their offset.
func hexDump(data []byte) string {
	var b strings.Builder
	for offset := 0; offset < len(data); offset += hexDumpWidth {
		end := min(offset+hexDumpWidth, len(data))
		fmt.Fprintf(&b, "%08x  %x\n", offset, data[offset:end])
	}
	return b.String()
}

// bytesDiff returns a unified diff between the hex dumps of the recorded and live byte strings.
func bytesDiff(recorded, live []byte) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(hexDump(recorded)),
		B:        difflib.SplitLines(hexDump(live)),
		FromFile: "onchain",
		ToFile:   "replay",
		Context:  2,
	})
	if err != nil {
		return ""
	}
	return strings.TrimRight(diff, "\n")
}
