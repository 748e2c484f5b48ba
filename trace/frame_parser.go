package trace

import (
	"encoding/json"
	"fmt"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/pkg/errors"
)

// ParseOptions tunes how permissive the frame parser is.
type ParseOptions struct {
	// AllowUnknownHostios keeps unregistered host calls as UnknownHostio instead of failing with a SchemaError.
	AllowUnknownHostios bool

	// OnUnknownHostio, if set, is called for every unregistered host call kept as UnknownHostio.
	OnUnknownHostio func(path string, name string)
}

// ParseTrace parses a complete tracer response. An empty array yields ErrNoTraceFrames and the response of a program
// activation yields ErrActivationTrace. Otherwise the response is parsed as the top-level frame executed at address.
func ParseTrace(address *common.Address, raw json.RawMessage, opts ParseOptions) (*TraceFrame, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ShapeError{Reason: "expected an array of steps"}
	}
	if len(items) == 0 {
		return nil, ErrNoTraceFrames
	}
	if isActivationTrace(items) {
		return nil, ErrActivationTrace
	}
	return parseSteps(address, items, "", opts)
}

// ParseFrame parses an array of tracer steps into a TraceFrame executed at address. Nested frames of call-like
// hostios are parsed recursively.
func ParseFrame(address *common.Address, raw json.RawMessage, opts ParseOptions) (*TraceFrame, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ShapeError{Reason: "expected an array of steps"}
	}
	return parseSteps(address, items, "", opts)
}

// isActivationTrace reports whether every element is an object carrying an address and no hostio name. Activation
// transactions are traced this way because no program code runs.
func isActivationTrace(items []json.RawMessage) bool {
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			return false
		}
		if _, ok := fields["address"]; !ok {
			return false
		}
		if rawName, ok := fields["name"]; ok {
			var name string
			if err := json.Unmarshal(rawName, &name); err != nil || name != "" {
				return false
			}
		}
	}
	return true
}

func parseSteps(address *common.Address, items []json.RawMessage, path string, opts ParseOptions) (*TraceFrame, error) {
	frame := NewTraceFrame(address)
	for i, item := range items {
		stepPath := fmt.Sprintf("%ssteps[%d]", path, i)
		h, err := parseStep(item, stepPath, opts)
		if err != nil {
			return nil, err
		}
		frame.Steps = append(frame.Steps, h)
	}
	return frame, nil
}

func parseStep(item json.RawMessage, path string, opts ParseOptions) (Hostio, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return Hostio{}, &ShapeError{Path: path, Reason: "expected a step object"}
	}

	name, err := stringKey(fields, "name", path)
	if err != nil {
		return Hostio{}, err
	}
	args, err := hexKey(fields, "args", name, path)
	if err != nil {
		return Hostio{}, err
	}
	outs, err := hexKey(fields, "outs", name, path)
	if err != nil {
		return Hostio{}, err
	}
	startInk, err := inkKey(fields, "startInk", path)
	if err != nil {
		return Hostio{}, err
	}
	endInk, err := inkKey(fields, "endInk", path)
	if err != nil {
		return Hostio{}, err
	}

	schema, known := SchemaFor(name)
	if !known && IsGenericCallName(name) {
		schema, known = evmCallSchema, true
	}

	if !known {
		if !opts.AllowUnknownHostios {
			return Hostio{}, &SchemaError{Path: path, Name: name}
		}
		unknown := &UnknownHostio{CallName: name, Args: args, Outs: outs}
		if _, hasSteps := fields["steps"]; hasSteps {
			if unknown.Frame, err = parseNestedFrame(fields, name, path, opts); err != nil {
				return Hostio{}, err
			}
		}
		if opts.OnUnknownHostio != nil {
			opts.OnUnknownHostio(path, name)
		}
		return Hostio{Kind: unknown, StartInk: startInk, EndInk: endInk}, nil
	}

	var frame *TraceFrame
	if schema.Frame != nil {
		if frame, err = parseNestedFrame(fields, name, path, opts); err != nil {
			return Hostio{}, err
		}
	}

	kind, err := decodeKind(schema, name, args, outs, frame)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Path = path
		}
		return Hostio{}, err
	}
	return Hostio{Kind: kind, StartInk: startInk, EndInk: endInk}, nil
}

// parseNestedFrame builds the callee frame of a call-like step from its "address" and "steps" keys.
func parseNestedFrame(fields map[string]json.RawMessage, name string, path string, opts ParseOptions) (*TraceFrame, error) {
	addressBytes, err := hexKey(fields, "address", name, path)
	if err != nil {
		return nil, err
	}
	if len(addressBytes) != common.AddressLength {
		return nil, &DecodeError{
			Path:   path,
			Hostio: name,
			Buffer: "address",
			Reason: "invalid address length",
			Wanted: common.AddressLength,
			Got:    len(addressBytes),
		}
	}
	address := common.BytesToAddress(addressBytes)

	rawSteps, ok := fields["steps"]
	if !ok {
		return nil, &ShapeError{Path: path, Key: "steps", Reason: "is missing"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawSteps, &items); err != nil || items == nil {
		return nil, &ShapeError{Path: path, Key: "steps", Reason: "is not an array"}
	}
	return parseSteps(&address, items, path+".", opts)
}

func stringKey(fields map[string]json.RawMessage, key string, path string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", &ShapeError{Path: path, Key: key, Reason: "is missing"}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ShapeError{Path: path, Key: key, Reason: "is not a string"}
	}
	return s, nil
}

// hexKey reads a 0x-prefixed hex string. Hex errors are decode errors, not shape errors.
func hexKey(fields map[string]json.RawMessage, key string, name string, path string) ([]byte, error) {
	s, err := stringKey(fields, key, path)
	if err != nil {
		return nil, err
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, &DecodeError{Path: path, Hostio: name, Buffer: Buffer(key), Reason: "invalid hex: " + err.Error()}
	}
	return b, nil
}

func inkKey(fields map[string]json.RawMessage, key string, path string) (uint64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, &ShapeError{Path: path, Key: key, Reason: "is missing"}
	}
	var ink uint64
	if err := json.Unmarshal(raw, &ink); err != nil {
		return 0, &ShapeError{Path: path, Key: key, Reason: "is not an unsigned 64-bit integer"}
	}
	return ink, nil
}
