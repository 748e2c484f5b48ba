package replay

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/stylus-replay/trace"
	"github.com/stretchr/testify/require"
)

/* This file holds helpers that assemble small wasm programs and recordings for the replay tests. */

const (
	wasmI32         = 0x7f
	wasmI64         = 0x7e
	wasmF32         = 0x7d
	wasmF64         = 0x7c
	wasmFuncType    = 0x60
	wasmOpConst     = 0x41
	wasmOpI64Const  = 0x42
	wasmOpF32Const  = 0x43
	wasmOpF64Const  = 0x44
	wasmOpWrapI64   = 0xa7
	wasmOpCall      = 0x10
	wasmOpEnd       = 0x0b
	wasmExportFn    = 0x00
	wasmExportMem   = 0x02
	wasmDataSection = 11
)

// uleb encodes n as unsigned LEB128.
func uleb(n uint32) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

// sleb encodes n as signed LEB128.
func sleb(n int64) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if (n == 0 && b&0x40 == 0) || (n == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func wasmVec(items ...[]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func wasmName(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func wasmSection(id byte, content []byte) []byte {
	return append(append([]byte{id}, uleb(uint32(len(content)))...), content...)
}

// wasmSignature is a function type with the given parameter types and an optional result. A zero result means none.
func wasmSignature(params []byte, result byte) []byte {
	out := append([]byte{wasmFuncType}, uleb(uint32(len(params)))...)
	out = append(out, params...)
	if result == 0 {
		return append(out, 0)
	}
	return append(out, 1, result)
}

func i32Const(n int32) []byte {
	return append([]byte{wasmOpConst}, sleb(int64(n))...)
}

func i64Const(n int64) []byte {
	return append([]byte{wasmOpI64Const}, sleb(n)...)
}

func f32Const(v float32) []byte {
	return binary.LittleEndian.AppendUint32([]byte{wasmOpF32Const}, math.Float32bits(v))
}

func f64Const(v float64) []byte {
	return binary.LittleEndian.AppendUint64([]byte{wasmOpF64Const}, math.Float64bits(v))
}

func call(index uint32) []byte {
	return append([]byte{wasmOpCall}, uleb(index)...)
}

// wasmImport is a vm_hooks import taking params i32 parameters and returning nothing.
type wasmImport struct {
	name   string
	params int
}

// hostImport is an import of module with explicit parameter types and an optional result type.
type hostImport struct {
	module string
	name   string
	params []byte
	result byte
}

// vmHook is a vm_hooks import taking i32 parameters followed by the given extra parameter types.
func vmHook(name string, i32s int, result byte, extra ...byte) hostImport {
	params := append(bytes.Repeat([]byte{wasmI32}, i32s), extra...)
	return hostImport{module: VMHooksModule, name: name, params: params, result: result}
}

// dataSegment places data in memory at offset before the entrypoint runs.
type dataSegment struct {
	offset int32
	data   []byte
}

/*
assembleProgram builds a module with one page of exported memory, the given vm_hooks imports and a user_entrypoint
whose body is the given instructions followed by the end opcode. Import i is called with call(i).
*/
func assembleProgram(imports []wasmImport, body ...[]byte) []byte {
	hostImports := make([]hostImport, 0, len(imports))
	for _, imp := range imports {
		hostImports = append(hostImports, vmHook(imp.name, imp.params, 0))
	}
	return assembleModule(hostImports, nil, body...)
}

// assembleModule is assembleProgram with typed imports from any module and memory initialized from segments.
func assembleModule(imports []hostImport, segments []dataSegment, body ...[]byte) []byte {
	var types [][]byte
	var importEntries [][]byte
	for i, imp := range imports {
		types = append(types, wasmSignature(imp.params, imp.result))
		entry := append(wasmName(imp.module), wasmName(imp.name)...)
		entry = append(entry, 0x00)
		entry = append(entry, uleb(uint32(i))...)
		importEntries = append(importEntries, entry)
	}
	entrypointType := uint32(len(types))
	types = append(types, wasmSignature([]byte{wasmI32}, wasmI32))

	code := []byte{0x00}
	for _, instr := range body {
		code = append(code, instr...)
	}
	code = append(code, wasmOpEnd)

	entrypointExport := append(wasmName(EntrypointName), wasmExportFn)
	entrypointExport = append(entrypointExport, uleb(uint32(len(imports)))...)
	memoryExport := append(wasmName("memory"), wasmExportMem, 0x00)

	module := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	module = append(module, wasmSection(1, wasmVec(types...))...)
	module = append(module, wasmSection(2, wasmVec(importEntries...))...)
	module = append(module, wasmSection(3, wasmVec(uleb(entrypointType)))...)
	module = append(module, wasmSection(5, wasmVec([]byte{0x00, 0x01}))...)
	module = append(module, wasmSection(7, wasmVec(entrypointExport, memoryExport))...)
	module = append(module, wasmSection(10, wasmVec(append(uleb(uint32(len(code))), code...)))...)
	if len(segments) > 0 {
		var entries [][]byte
		for _, segment := range segments {
			entry := append([]byte{0x00}, i32Const(segment.offset)...)
			entry = append(entry, wasmOpEnd)
			entry = append(entry, uleb(uint32(len(segment.data)))...)
			entries = append(entries, append(entry, segment.data...))
		}
		module = append(module, wasmSection(wasmDataSection, wasmVec(entries...))...)
	}
	return module
}

/*
storageProgram reads its args to offset 0, loads the storage slot keyed by the first 32 bytes of the args into offset
64 and returns that value with status 0.
*/
func storageProgram() []byte {
	return assembleProgram(
		[]wasmImport{{"read_args", 1}, {"storage_load_bytes32", 2}, {"write_result", 2}},
		i32Const(0), call(0),
		i32Const(0), i32Const(64), call(1),
		i32Const(64), i32Const(32), call(2),
		i32Const(0),
	)
}

// exitProgram calls exit_early(1) and would otherwise return 0.
func exitProgram() []byte {
	return assembleProgram(
		[]wasmImport{{"exit_early", 1}},
		i32Const(1), call(0),
		i32Const(0),
	)
}

// growProgram calls pay_for_memory_grow(pages) and returns 0.
func growProgram(pages int32) []byte {
	return assembleProgram(
		[]wasmImport{{"pay_for_memory_grow", 1}},
		i32Const(pages), call(0),
		i32Const(0),
	)
}

// memoryOnlyProgram has an entrypoint that returns 0 without making host calls.
func memoryOnlyProgram() []byte {
	return assembleProgram(nil, i32Const(0))
}

func fill(b string, n int) string {
	return strings.Repeat(b, n)
}

func u32Hex(n uint32) string {
	return fmt.Sprintf("%08x", n)
}

// step renders a recorded host call with 100 ink used.
func step(name string, args string, outs string) string {
	return fmt.Sprintf(`{"name":%q,"args":"0x%s","outs":"0x%s","startInk":1000,"endInk":900}`, name, args, outs)
}

// callStep renders a recorded call kind executed at address with no nested steps.
func callStep(name string, args string, outs string, address string) string {
	return fmt.Sprintf(`{"name":%q,"args":"0x%s","outs":"0x%s","startInk":1000,"endInk":900,"address":"0x%s","steps":[]}`,
		name, args, outs, address)
}

func recording(t *testing.T, address *common.Address, steps ...string) *trace.TraceFrame {
	frame, err := trace.ParseFrame(address, json.RawMessage("["+strings.Join(steps, ",")+"]"), trace.ParseOptions{})
	require.NoError(t, err)
	return frame
}
