package trace

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/crytic/medusa-geth/common"
	"github.com/holiman/uint256"
	"golang.org/x/exp/slices"
)

// FieldShape describes how a field is laid out in a hostio buffer.
type FieldShape int

const (
	// ShapeAddress is a 20 byte account address.
	ShapeAddress FieldShape = iota
	// ShapeHash is a 32 byte word kept as raw bytes (keys, digests, salts).
	ShapeHash
	// ShapeWord is a 32 byte big-endian unsigned integer.
	ShapeWord
	ShapeUint8
	ShapeUint16
	ShapeUint32
	ShapeUint64
	// ShapeBool is a big-endian u32 where any non-zero value is true.
	ShapeBool
	// ShapeBytes consumes the rest of the buffer as an opaque blob.
	ShapeBytes
	// ShapeText consumes the rest of the buffer as UTF-8 text.
	ShapeText
	// ShapeFrame is the nested frame built from a step's "address" and "steps" keys.
	ShapeFrame
	// ShapeName is the recorded host call name, used by generic variants.
	ShapeName
)

// String returns the shape as it is shown in schema listings and diagnostics.
func (s FieldShape) String() string {
	switch s {
	case ShapeAddress:
		return "address"
	case ShapeHash:
		return "bytes32"
	case ShapeWord:
		return "uint256"
	case ShapeUint8:
		return "u8"
	case ShapeUint16:
		return "u16"
	case ShapeUint32:
		return "u32"
	case ShapeUint64:
		return "u64"
	case ShapeBool:
		return "bool"
	case ShapeBytes:
		return "bytes"
	case ShapeText:
		return "string"
	case ShapeFrame:
		return "frame"
	case ShapeName:
		return "name"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Width returns the fixed number of bytes the shape occupies, or -1 if it consumes the rest of its buffer or is not
// read from a buffer at all.
func (s FieldShape) Width() int {
	switch s {
	case ShapeAddress:
		return common.AddressLength
	case ShapeHash, ShapeWord:
		return 32
	case ShapeUint8:
		return 1
	case ShapeUint16:
		return 2
	case ShapeUint32, ShapeBool:
		return 4
	case ShapeUint64:
		return 8
	default:
		return -1
	}
}

// Buffer names where a field's value comes from.
type Buffer string

const (
	BufferArgs  Buffer = "args"
	BufferOuts  Buffer = "outs"
	BufferFrame Buffer = "frame"
	BufferName  Buffer = "name"
)

// FieldSchema describes a single decoded field of a hostio kind.
type FieldSchema struct {
	// Name is the snake_case name of the field, as shown in diagnostics.
	Name string
	// Shape is the wire shape of the field.
	Shape FieldShape
	// Buffer is where the field is read from.
	Buffer Buffer

	// index is the struct field index in the variant type.
	index int
}

// KindSchema is the ordered field layout of a hostio kind. Decoding, encoding, the schema listing and the diagnostic
// formatter are all driven by it.
type KindSchema struct {
	// Name is the tracer's name for the host call.
	Name string
	// Args lists the fields decoded from the args buffer, in wire order.
	Args []FieldSchema
	// Outs lists the fields decoded from the outs buffer, in wire order.
	Outs []FieldSchema
	// Frame is the nested frame field, if the kind carries one.
	Frame *FieldSchema
	// NameField receives the recorded host call name for generic variants.
	NameField *FieldSchema
	// Legacy marks kinds only emitted by older tracers.
	Legacy bool

	typ reflect.Type
}

// New allocates an empty variant of this kind.
func (s *KindSchema) New() Kind {
	return reflect.New(s.typ).Interface().(Kind)
}

// Fields returns the args fields followed by the outs fields.
func (s *KindSchema) Fields() []FieldSchema {
	return append(slices.Clone(s.Args), s.Outs...)
}

// Layout renders a buffer's layout as "name: shape, ..." for schema listings.
func (s *KindSchema) Layout(buffer Buffer) string {
	fields := s.Args
	if buffer == BufferOuts {
		fields = s.Outs
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Shape))
	}
	return strings.Join(parts, ", ")
}

// registeredKinds is the canonical set of host calls emitted by the Stylus tracer.
var registeredKinds = []Kind{
	(*UserEntrypoint)(nil),
	(*UserReturned)(nil),
	(*ReadArgs)(nil),
	(*WriteResult)(nil),
	(*ExitEarly)(nil),
	(*StorageLoadBytes32)(nil),
	(*StorageCacheBytes32)(nil),
	(*StorageFlushCache)(nil),
	(*TransientLoadBytes32)(nil),
	(*TransientStoreBytes32)(nil),
	(*AccountBalance)(nil),
	(*AccountCode)(nil),
	(*AccountCodeSize)(nil),
	(*AccountCodehash)(nil),
	(*BlockBasefee)(nil),
	(*BlockCoinbase)(nil),
	(*BlockGasLimit)(nil),
	(*BlockNumber)(nil),
	(*BlockTimestamp)(nil),
	(*ChainID)(nil),
	(*ContractAddress)(nil),
	(*EvmGasLeft)(nil),
	(*EvmInkLeft)(nil),
	(*MathDiv)(nil),
	(*MathMod)(nil),
	(*MathPow)(nil),
	(*MathAddMod)(nil),
	(*MathMulMod)(nil),
	(*MsgReentrant)(nil),
	(*MsgSender)(nil),
	(*MsgValue)(nil),
	(*NativeKeccak256)(nil),
	(*TxGasPrice)(nil),
	(*TxInkPrice)(nil),
	(*TxOrigin)(nil),
	(*PayForMemoryGrow)(nil),
	(*CallContract)(nil),
	(*DelegateCallContract)(nil),
	(*StaticCallContract)(nil),
	(*Create1)(nil),
	(*Create2)(nil),
	(*EmitLog)(nil),
	(*ReadReturnData)(nil),
	(*ReturnDataSize)(nil),
	(*ConsoleLogText)(nil),
	(*ConsoleLog)(nil),
}

// legacyKinds are host calls only emitted by older tracers.
var legacyKinds = []Kind{
	(*StorageStoreBytes32)(nil),
}

// GenericCallPrefix is the prefix of host call names decoded into EvmCall when they are not otherwise known.
const GenericCallPrefix = "evm_"

var (
	schemasByName map[string]*KindSchema
	evmCallSchema *KindSchema
	addressType   = reflect.TypeOf(common.Address{})
	hashType      = reflect.TypeOf(common.Hash{})
	wordType      = reflect.TypeOf(uint256.Int{})
	frameType     = reflect.TypeOf(TraceFrame{})
)

func init() {
	schemasByName = make(map[string]*KindSchema, len(registeredKinds)+len(legacyKinds))
	register := func(kind Kind, legacy bool) {
		schema, err := buildSchema(kind)
		if err != nil {
			panic(err)
		}
		schema.Legacy = legacy
		if _, exists := schemasByName[schema.Name]; exists {
			panic(fmt.Sprintf("hostio %q registered twice", schema.Name))
		}
		schemasByName[schema.Name] = schema
	}
	for _, kind := range registeredKinds {
		register(kind, false)
	}
	for _, kind := range legacyKinds {
		register(kind, true)
	}

	var err error
	evmCallSchema, err = buildSchemaForType(reflect.TypeOf(EvmCall{}), GenericCallPrefix+"*")
	if err != nil {
		panic(err)
	}
}

// SchemaFor returns the schema of a registered host call name.
func SchemaFor(name string) (*KindSchema, bool) {
	schema, ok := schemasByName[name]
	return schema, ok
}

// SchemaOf returns the schema describing a decoded kind. UnknownHostio has no schema.
func SchemaOf(kind Kind) (*KindSchema, bool) {
	if _, ok := kind.(*EvmCall); ok {
		return evmCallSchema, true
	}
	if _, ok := kind.(*UnknownHostio); ok {
		return nil, false
	}
	schema, ok := schemasByName[kind.Name()]
	if !ok || schema.typ != reflect.TypeOf(kind).Elem() {
		return nil, false
	}
	return schema, true
}

// Schemas returns every registered schema sorted by name.
func Schemas() []*KindSchema {
	names := make([]string, 0, len(schemasByName))
	for name := range schemasByName {
		names = append(names, name)
	}
	slices.Sort(names)
	schemas := make([]*KindSchema, 0, len(names))
	for _, name := range names {
		schemas = append(schemas, schemasByName[name])
	}
	return schemas
}

// IsGenericCallName reports whether an unregistered name follows the "evm_" convention.
func IsGenericCallName(name string) bool {
	_, known := schemasByName[name]
	return !known && strings.HasPrefix(name, GenericCallPrefix)
}

// buildSchema reflects over a variant pointer type to derive its field layout.
func buildSchema(kind Kind) (*KindSchema, error) {
	t := reflect.TypeOf(kind)
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("hostio kind %T must be a pointer to a struct", kind)
	}
	return buildSchemaForType(t.Elem(), kind.Name())
}

func buildSchemaForType(t reflect.Type, name string) (*KindSchema, error) {
	schema := &KindSchema{Name: name, typ: t}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("hostio")
		if !ok {
			return nil, fmt.Errorf("hostio %s: field %s has no hostio tag", name, field.Name)
		}

		shape, err := shapeOf(field.Type)
		if err != nil {
			return nil, fmt.Errorf("hostio %s: field %s: %v", name, field.Name, err)
		}
		fs := FieldSchema{Name: snakeCase(field.Name), Shape: shape, Buffer: Buffer(tag), index: i}

		switch fs.Buffer {
		case BufferArgs:
			if err := checkAppendable(schema.Args, fs); err != nil {
				return nil, fmt.Errorf("hostio %s: %v", name, err)
			}
			schema.Args = append(schema.Args, fs)
		case BufferOuts:
			if err := checkAppendable(schema.Outs, fs); err != nil {
				return nil, fmt.Errorf("hostio %s: %v", name, err)
			}
			schema.Outs = append(schema.Outs, fs)
		case BufferFrame:
			if shape != ShapeFrame || schema.Frame != nil {
				return nil, fmt.Errorf("hostio %s: field %s is not a valid frame field", name, field.Name)
			}
			schema.Frame = &fs
		case BufferName:
			if field.Type.Kind() != reflect.String {
				return nil, fmt.Errorf("hostio %s: name field %s must be a string", name, field.Name)
			}
			fs.Shape = ShapeName
			schema.NameField = &fs
		default:
			return nil, fmt.Errorf("hostio %s: field %s has unknown buffer %q", name, field.Name, tag)
		}
	}
	return schema, nil
}

// checkAppendable rejects fields placed after a rest-of-buffer field, and frames inside a buffer.
func checkAppendable(fields []FieldSchema, next FieldSchema) error {
	if next.Shape == ShapeFrame {
		return fmt.Errorf("field %s: frames cannot be read from a buffer", next.Name)
	}
	if len(fields) > 0 && fields[len(fields)-1].Shape.Width() < 0 {
		return fmt.Errorf("field %s follows rest-of-buffer field %s", next.Name, fields[len(fields)-1].Name)
	}
	return nil
}

func shapeOf(t reflect.Type) (FieldShape, error) {
	switch t {
	case addressType:
		return ShapeAddress, nil
	case hashType:
		return ShapeHash, nil
	case wordType:
		return ShapeWord, nil
	case frameType:
		return ShapeFrame, nil
	}
	switch t.Kind() {
	case reflect.Uint8:
		return ShapeUint8, nil
	case reflect.Uint16:
		return ShapeUint16, nil
	case reflect.Uint32:
		return ShapeUint32, nil
	case reflect.Uint64:
		return ShapeUint64, nil
	case reflect.Bool:
		return ShapeBool, nil
	case reflect.String:
		return ShapeText, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ShapeBytes, nil
		}
	}
	return 0, fmt.Errorf("unsupported field type %v", t)
}

// snakeCase converts an exported Go field name into the snake_case name used by the tracer, e.g. OutsLen -> outs_len
// and ChainID -> chain_id.
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
