package trace

import (
	"encoding/json"
	"fmt"

	"github.com/crytic/medusa-geth/common"
	"github.com/fxamacker/cbor"
	"github.com/pkg/errors"
)

// Format selects how a trace is written out.
type Format string

const (
	// FormatJSON is the raw tracer output, as returned by the node.
	FormatJSON Format = "json"
	// FormatWire is the tracer JSON layout re-encoded from the decoded frames.
	FormatWire Format = "wire"
	// FormatCBOR is the tracer layout encoded as canonical CBOR.
	FormatCBOR Format = "cbor"
	// FormatTree is the human-readable tree rendering.
	FormatTree Format = "tree"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatWire, FormatCBOR, FormatTree}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown trace format %q, expected one of %v", s, Formats)
}

// cborHostio mirrors wireHostio with plain byte strings so that every field is a CBOR byte string.
type cborHostio struct {
	Name     string        `cbor:"name"`
	Args     []byte        `cbor:"args"`
	Outs     []byte        `cbor:"outs"`
	StartInk uint64        `cbor:"startInk"`
	EndInk   uint64        `cbor:"endInk"`
	Address  []byte        `cbor:"address,omitempty"`
	Steps    *[]cborHostio `cbor:"steps,omitempty"`
}

func toCBORSteps(steps []wireHostio) []cborHostio {
	out := make([]cborHostio, 0, len(steps))
	for _, w := range steps {
		c := cborHostio{
			Name:     w.Name,
			Args:     []byte(w.Args),
			Outs:     []byte(w.Outs),
			StartInk: w.StartInk,
			EndInk:   w.EndInk,
		}
		if w.Address != nil {
			c.Address = w.Address.Bytes()
		}
		if w.Steps != nil {
			nested := toCBORSteps(*w.Steps)
			c.Steps = &nested
		}
		out = append(out, c)
	}
	return out
}

// MarshalCBOR encodes the frame's steps in the tracer layout as canonical CBOR.
func (f *TraceFrame) MarshalCBOR() ([]byte, error) {
	steps, err := f.toWire()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(toCBORSteps(steps), cbor.CanonicalEncOptions())
}

// unmarshalFrameCBOR decodes a CBOR export back into a TraceFrame executed at address. It is the inverse of
// MarshalCBOR.
func unmarshalFrameCBOR(address *common.Address, data []byte, opts ParseOptions) (*TraceFrame, error) {
	var steps []cborHostio
	if err := cbor.Unmarshal(data, &steps); err != nil {
		return nil, errors.WithStack(err)
	}

	// Route through the JSON parser so that CBOR imports get exactly the same validation
	raw, err := json.Marshal(fromCBORSteps(steps))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ParseFrame(address, raw, opts)
}

func fromCBORSteps(steps []cborHostio) []wireHostio {
	out := make([]wireHostio, 0, len(steps))
	for _, c := range steps {
		w := wireHostio{
			Name:     c.Name,
			Args:     c.Args,
			Outs:     c.Outs,
			StartInk: c.StartInk,
			EndInk:   c.EndInk,
		}
		if c.Address != nil {
			address := common.BytesToAddress(c.Address)
			w.Address = &address
		}
		if c.Steps != nil {
			nested := fromCBORSteps(*c.Steps)
			w.Steps = &nested
		}
		out = append(out, w)
	}
	return out
}

// Export renders the trace in the requested format.
func (t *Trace) Export(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return t.JSON, nil
	case FormatWire:
		return json.MarshalIndent(t.TopFrame, "", "  ")
	case FormatCBOR:
		return t.TopFrame.MarshalCBOR()
	case FormatTree:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("unknown trace format %q", format)
	}
}
