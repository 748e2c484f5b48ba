package trace

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/holiman/uint256"
)

// Hostio is a single recorded host call: its decoded kind and the ink bracket around it.
type Hostio struct {
	// Kind is the decoded host call.
	Kind Kind
	// StartInk is the ink left before the call.
	StartInk uint64
	// EndInk is the ink left after the call.
	EndInk uint64
}

// FieldValue is a named, rendered field of a hostio.
type FieldValue struct {
	Name   string
	Buffer Buffer
	Value  string
}

// Name returns the host call name.
func (h Hostio) Name() string {
	return h.Kind.Name()
}

// InkUsed returns the ink consumed by the call. Brackets where the ink went up are reported as zero.
func (h Hostio) InkUsed() uint64 {
	if h.EndInk > h.StartInk {
		return 0
	}
	return h.StartInk - h.EndInk
}

// Fields renders the decoded fields in schema order: args first, then outs. Nested frames are summarized.
func (h Hostio) Fields() []FieldValue {
	if unknown, ok := h.Kind.(*UnknownHostio); ok {
		return []FieldValue{
			{Name: "args", Buffer: BufferArgs, Value: hexutil.Encode(unknown.Args)},
			{Name: "outs", Buffer: BufferOuts, Value: hexutil.Encode(unknown.Outs)},
		}
	}

	schema, ok := SchemaOf(h.Kind)
	if !ok {
		return nil
	}
	value := reflect.ValueOf(h.Kind).Elem()
	fields := make([]FieldValue, 0, len(schema.Args)+len(schema.Outs)+1)
	for _, f := range schema.Fields() {
		fields = append(fields, FieldValue{
			Name:   f.Name,
			Buffer: f.Buffer,
			Value:  FormatFieldValue(value.Field(f.index).Interface()),
		})
	}
	if schema.Frame != nil {
		frame := value.Field(schema.Frame.index).Interface().(TraceFrame)
		fields = append(fields, FieldValue{Name: "frame", Buffer: BufferFrame, Value: frame.Summary()})
	}
	return fields
}

// String renders the hostio as "name { field: value, ... }".
func (h Hostio) String() string {
	fields := h.Fields()
	if len(fields) == 0 {
		return h.Name()
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Value))
	}
	return fmt.Sprintf("%s { %s }", h.Name(), strings.Join(parts, ", "))
}

// FormatFieldValue renders a decoded field value for diagnostics. Addresses and hashes are hex, words and integers are
// decimal, blobs are 0x-prefixed hex and text is quoted.
func FormatFieldValue(v any) string {
	switch t := v.(type) {
	case common.Address:
		return t.Hex()
	case common.Hash:
		return t.Hex()
	case uint256.Int:
		return t.Dec()
	case []byte:
		return hexutil.Encode(t)
	case string:
		return fmt.Sprintf("%q", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// wireHostio is the JSON layout produced by the Stylus tracer.
type wireHostio struct {
	Name     string          `json:"name" cbor:"name"`
	Args     hexutil.Bytes   `json:"args" cbor:"args"`
	Outs     hexutil.Bytes   `json:"outs" cbor:"outs"`
	StartInk uint64          `json:"startInk" cbor:"startInk"`
	EndInk   uint64          `json:"endInk" cbor:"endInk"`
	Address  *common.Address `json:"address,omitempty" cbor:"address,omitempty"`
	Steps    *[]wireHostio   `json:"steps,omitempty" cbor:"steps,omitempty"`
}

// toWire re-encodes the hostio into the tracer's layout.
func (h Hostio) toWire() (wireHostio, error) {
	args, outs, err := EncodeKind(h.Kind)
	if err != nil {
		return wireHostio{}, err
	}
	w := wireHostio{
		Name:     h.Name(),
		Args:     args,
		Outs:     outs,
		StartInk: h.StartInk,
		EndInk:   h.EndInk,
	}
	if frame := NestedFrame(h.Kind); frame != nil {
		steps, err := frame.toWire()
		if err != nil {
			return wireHostio{}, err
		}
		w.Address = frame.Address
		w.Steps = &steps
	}
	return w, nil
}

// MarshalJSON encodes the hostio in the tracer's JSON layout.
func (h Hostio) MarshalJSON() ([]byte, error) {
	w, err := h.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}
