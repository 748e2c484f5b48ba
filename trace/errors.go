package trace

import (
	"fmt"
	"strings"

	"github.com/crytic/medusa-geth/common"
	"github.com/pkg/errors"
)

var (
	// ErrNoTraceFrames is returned when the node returns an empty trace.
	ErrNoTraceFrames = errors.New("no trace frames found, perhaps you are attempting to trace the contract deployment transaction")

	// ErrActivationTrace is returned when the traced transaction only activated a program.
	ErrActivationTrace = errors.New("tx was a contract activation transaction, it has no trace frames")
)

// AcquisitionError is returned when the node could not provide the data needed to build a trace.
type AcquisitionError struct {
	// Op is the operation that failed, e.g. "get receipt" or "debug_traceTransaction".
	Op string
	// Hash is the transaction involved, if any.
	Hash *common.Hash
	// Err is the underlying error.
	Err error
}

func (e *AcquisitionError) Error() string {
	if e.Hash != nil {
		return fmt.Sprintf("failed to %s for tx %s: %v", e.Op, e.Hash.Hex(), e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// ShapeError is returned when the trace JSON does not have the expected structure.
type ShapeError struct {
	// Path locates the offending step, e.g. "steps[2].steps[0]".
	Path string
	// Key is the missing or malformed key, if any.
	Key string
	// Reason describes what is wrong.
	Reason string
}

func (e *ShapeError) Error() string {
	location := e.Path
	if location == "" {
		location = "trace"
	}
	if e.Key != "" {
		return fmt.Sprintf("malformed trace at %s: key %q %s", location, e.Key, e.Reason)
	}
	return fmt.Sprintf("malformed trace at %s: %s", location, e.Reason)
}

// DecodeError is returned when a hostio buffer cannot be decoded according to its schema.
type DecodeError struct {
	// Path locates the offending step. It is filled in by the frame parser.
	Path string
	// Hostio is the name of the host call being decoded.
	Hostio string
	// Buffer is the buffer being decoded ("args", "outs" or "address").
	Buffer Buffer
	// Field is the field being decoded, empty for leftover bytes and hex errors.
	Field string
	// Reason describes what is wrong.
	Reason string
	// Wanted is the number of bytes a fixed-width field needed.
	Wanted int
	// Got is the number of bytes available, or left over.
	Got int
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to decode %s of %s", e.Buffer, e.Hostio)
	if e.Path != "" {
		fmt.Fprintf(&b, " at %s", e.Path)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	switch {
	case e.Wanted > 0:
		fmt.Fprintf(&b, " (wanted %d bytes, got %d)", e.Wanted, e.Got)
	case e.Got > 0:
		fmt.Fprintf(&b, " (%d bytes)", e.Got)
	}
	return b.String()
}

// SchemaError is returned when a step names a host call that is not registered.
type SchemaError struct {
	// Path locates the offending step.
	Path string
	// Name is the unknown host call name.
	Name string
}

func (e *SchemaError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("unknown hostio %q at %s", e.Name, e.Path)
	}
	return fmt.Sprintf("unknown hostio %q", e.Name)
}

// DivergenceError is returned when the live execution issues a host call that does not match the next recorded one,
// or when the recorded and live sequences have different lengths.
type DivergenceError struct {
	// FrameAddress is the address of the frame being replayed. Nil means a contract deployment or simulation.
	FrameAddress *common.Address
	// Expected is the host call the live execution issued, or the unconsumed recorded call when Unconsumed is set.
	Expected string
	// Actual is the next recorded host call, nil if the recording was exhausted.
	Actual *Hostio
	// Unconsumed is set when the live execution completed but the recording still had host calls left.
	Unconsumed bool
	// Position is the zero-based index of the recorded step the divergence was detected at.
	Position int
}

// FrameDescription describes the frame a divergence happened in.
func (e *DivergenceError) FrameDescription() string {
	if e.FrameAddress == nil {
		return "contract deployment"
	}
	return "call to " + e.FrameAddress.Hex()
}

func (e *DivergenceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "divergence detected while simulating a %s\n", e.FrameDescription())
	if e.Unconsumed {
		fmt.Fprintf(&b, "execution completed but the recording still expects a call to %s\n", e.Expected)
		if e.Actual != nil {
			fmt.Fprintf(&b, "unconsumed recorded call at step %d: %s", e.Position, e.Actual.String())
		}
		return b.String()
	}

	fmt.Fprintf(&b, "the program made a call to %s at step %d\n", e.Expected, e.Position)
	if e.Actual == nil {
		b.WriteString("but no such call is made onchain")
	} else {
		fmt.Fprintf(&b, "but onchain there's a call to %s\n%s", e.Actual.Name(), e.Actual.String())
	}
	return b.String()
}
