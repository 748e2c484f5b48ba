package trace

import (
	"encoding/binary"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/crytic/medusa-geth/common"
	"github.com/holiman/uint256"
)

// byteReader consumes a hostio buffer front to back. Every failed read produces a DecodeError naming the hostio, the
// buffer and the field being read.
type byteReader struct {
	hostio string
	buffer Buffer
	data   []byte
	offset int
}

func newByteReader(hostio string, buffer Buffer, data []byte) *byteReader {
	return &byteReader{hostio: hostio, buffer: buffer, data: data}
}

// take returns the next n bytes of the buffer.
func (r *byteReader) take(field string, n int) ([]byte, error) {
	if available := len(r.data) - r.offset; available < n {
		return nil, &DecodeError{
			Hostio: r.hostio,
			Buffer: r.buffer,
			Field:  field,
			Reason: "buffer too short",
			Wanted: n,
			Got:    available,
		}
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

// rest consumes and returns a copy of everything left in the buffer.
func (r *byteReader) rest() []byte {
	b := append([]byte{}, r.data[r.offset:]...)
	r.offset = len(r.data)
	return b
}

// finish fails if any bytes were left unconsumed.
func (r *byteReader) finish() error {
	if leftover := len(r.data) - r.offset; leftover > 0 {
		return &DecodeError{
			Hostio: r.hostio,
			Buffer: r.buffer,
			Reason: "leftover bytes",
			Got:    leftover,
		}
	}
	return nil
}

// readField decodes a single field of the given shape into v.
func (r *byteReader) readField(field FieldSchema, v reflect.Value) error {
	if field.Shape == ShapeBytes {
		v.SetBytes(r.rest())
		return nil
	}
	if field.Shape == ShapeText {
		// Invalid sequences become U+FFFD so that a stray log line does not fail the whole trace
		v.SetString(strings.ToValidUTF8(string(r.rest()), string(utf8.RuneError)))
		return nil
	}

	b, err := r.take(field.Name, field.Shape.Width())
	if err != nil {
		return err
	}
	switch field.Shape {
	case ShapeAddress:
		v.Set(reflect.ValueOf(common.BytesToAddress(b)))
	case ShapeHash:
		v.Set(reflect.ValueOf(common.BytesToHash(b)))
	case ShapeWord:
		var word uint256.Int
		word.SetBytes32(b)
		v.Set(reflect.ValueOf(word))
	case ShapeUint8:
		v.SetUint(uint64(b[0]))
	case ShapeUint16:
		v.SetUint(uint64(binary.BigEndian.Uint16(b)))
	case ShapeUint32:
		v.SetUint(uint64(binary.BigEndian.Uint32(b)))
	case ShapeUint64:
		v.SetUint(binary.BigEndian.Uint64(b))
	case ShapeBool:
		v.SetBool(binary.BigEndian.Uint32(b) != 0)
	default:
		return &DecodeError{Hostio: r.hostio, Buffer: r.buffer, Field: field.Name, Reason: "field shape " + field.Shape.String() + " cannot be read from a buffer"}
	}
	return nil
}

// decodeKind decodes the args and outs buffers of a step according to schema. frame is stored in the kind's frame
// field when the schema has one, and name in its name field.
func decodeKind(schema *KindSchema, name string, args []byte, outs []byte, frame *TraceFrame) (Kind, error) {
	kind := schema.New()
	value := reflect.ValueOf(kind).Elem()

	if err := decodeBuffer(schema.Args, newByteReader(name, BufferArgs, args), value); err != nil {
		return nil, err
	}
	if err := decodeBuffer(schema.Outs, newByteReader(name, BufferOuts, outs), value); err != nil {
		return nil, err
	}
	if schema.Frame != nil && frame != nil {
		value.Field(schema.Frame.index).Set(reflect.ValueOf(*frame))
	}
	if schema.NameField != nil {
		value.Field(schema.NameField.index).SetString(name)
	}
	return kind, nil
}

func decodeBuffer(fields []FieldSchema, reader *byteReader, value reflect.Value) error {
	for _, field := range fields {
		if err := reader.readField(field, value.Field(field.index)); err != nil {
			return err
		}
	}
	return reader.finish()
}

// EncodeKind re-encodes a decoded kind into its args and outs buffers. It is the inverse of decoding: fields are
// written in schema order and bools are written as 0 or 1.
func EncodeKind(kind Kind) ([]byte, []byte, error) {
	if unknown, ok := kind.(*UnknownHostio); ok {
		return unknown.Args, unknown.Outs, nil
	}
	schema, ok := SchemaOf(kind)
	if !ok {
		return nil, nil, &SchemaError{Name: kind.Name()}
	}

	value := reflect.ValueOf(kind).Elem()
	args := encodeBuffer(schema.Args, value)
	outs := encodeBuffer(schema.Outs, value)
	return args, outs, nil
}

func encodeBuffer(fields []FieldSchema, value reflect.Value) []byte {
	out := make([]byte, 0)
	for _, field := range fields {
		out = appendField(out, field.Shape, value.Field(field.index))
	}
	return out
}

func appendField(out []byte, shape FieldShape, v reflect.Value) []byte {
	switch shape {
	case ShapeAddress:
		address := v.Interface().(common.Address)
		return append(out, address.Bytes()...)
	case ShapeHash:
		hash := v.Interface().(common.Hash)
		return append(out, hash.Bytes()...)
	case ShapeWord:
		word := v.Interface().(uint256.Int)
		b := word.Bytes32()
		return append(out, b[:]...)
	case ShapeUint8:
		return append(out, uint8(v.Uint()))
	case ShapeUint16:
		return binary.BigEndian.AppendUint16(out, uint16(v.Uint()))
	case ShapeUint32:
		return binary.BigEndian.AppendUint32(out, uint32(v.Uint()))
	case ShapeUint64:
		return binary.BigEndian.AppendUint64(out, v.Uint())
	case ShapeBool:
		var flag uint32
		if v.Bool() {
			flag = 1
		}
		return binary.BigEndian.AppendUint32(out, flag)
	case ShapeBytes:
		return append(out, v.Bytes()...)
	case ShapeText:
		return append(out, v.String()...)
	default:
		return out
	}
}
