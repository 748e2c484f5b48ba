package trace

import (
	"encoding/json"
	"fmt"

	"github.com/crytic/medusa-geth/common"
)

// TraceFrame is the ordered sequence of host calls made by one program invocation. Call-like hostios carry the frame
// of the callee, so a TraceFrame is the root of a tree.
type TraceFrame struct {
	// Steps are the recorded host calls, in execution order.
	Steps []Hostio
	// Address is the address of the executing program. Nil for contract deployments and simulations.
	Address *common.Address
}

// NewTraceFrame creates an empty frame for the given address.
func NewTraceFrame(address *common.Address) *TraceFrame {
	return &TraceFrame{Steps: make([]Hostio, 0), Address: address}
}

// Reader returns a FrameReader over a copy of the frame's steps.
func (f *TraceFrame) Reader() *FrameReader {
	return NewFrameReader(f)
}

// Len returns the number of steps in this frame, not counting nested frames.
func (f *TraceFrame) Len() int {
	return len(f.Steps)
}

// Walk visits every hostio of the frame and its nested frames depth-first, in execution order. depth is zero for
// the frame Walk is called on. Walk stops early when fn returns false.
func (f *TraceFrame) Walk(fn func(h Hostio, frame *TraceFrame, depth int) bool) {
	f.walk(fn, 0)
}

func (f *TraceFrame) walk(fn func(h Hostio, frame *TraceFrame, depth int) bool, depth int) bool {
	for _, h := range f.Steps {
		if !fn(h, f, depth) {
			return false
		}
		if nested := NestedFrame(h.Kind); nested != nil {
			if !nested.walk(fn, depth+1) {
				return false
			}
		}
	}
	return true
}

// Count returns the number of steps in this frame and all nested frames.
func (f *TraceFrame) Count() int {
	count := 0
	f.Walk(func(Hostio, *TraceFrame, int) bool {
		count++
		return true
	})
	return count
}

// Find returns the first frame, in execution order, executed at the given address. The frame itself is considered
// first.
func (f *TraceFrame) Find(address common.Address) *TraceFrame {
	if f.Address != nil && *f.Address == address {
		return f
	}
	var found *TraceFrame
	f.Walk(func(h Hostio, _ *TraceFrame, _ int) bool {
		if nested := NestedFrame(h.Kind); nested != nil && nested.Address != nil && *nested.Address == address {
			found = nested
			return false
		}
		return true
	})
	return found
}

// EntrypointArgsLen returns the args length recorded by the frame's user_entrypoint, if any.
func (f *TraceFrame) EntrypointArgsLen() (uint32, bool) {
	for _, h := range f.Steps {
		if entry, ok := h.Kind.(*UserEntrypoint); ok {
			return entry.ArgsLen, true
		}
	}
	return 0, false
}

// Summary describes the frame in one line, e.g. "0xdead.. (3 steps)".
func (f *TraceFrame) Summary() string {
	where := "deployment"
	if f.Address != nil {
		where = f.Address.Hex()
	}
	return fmt.Sprintf("%s (%d steps)", where, len(f.Steps))
}

func (f *TraceFrame) toWire() ([]wireHostio, error) {
	steps := make([]wireHostio, 0, len(f.Steps))
	for _, h := range f.Steps {
		w, err := h.toWire()
		if err != nil {
			return nil, err
		}
		steps = append(steps, w)
	}
	return steps, nil
}

// MarshalJSON encodes the frame as the tracer's JSON array of steps.
func (f *TraceFrame) MarshalJSON() ([]byte, error) {
	steps, err := f.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(steps)
}
