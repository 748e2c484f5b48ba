package trace

import (
	"github.com/crytic/medusa-geth/common"
	"github.com/holiman/uint256"
)

// Kind is implemented by every decoded host call variant. The `hostio` struct tag of each exported field names the
// buffer it is decoded from ("args", "outs", "frame" or "name") and fields are decoded in declaration order, so the
// struct layout is the wire layout.
//
// Name must not dereference its receiver for registered variants: the registry calls it on nil pointers to learn the
// tracer name of each variant.
type Kind interface {
	Name() string
}

// UserEntrypoint marks the start of a program invocation.
type UserEntrypoint struct {
	ArgsLen uint32 `hostio:"args"`
}

// UserReturned marks the end of a program invocation.
type UserReturned struct {
	Status uint32 `hostio:"outs"`
}

// ReadArgs copies the call's input into the program.
type ReadArgs struct {
	Args []byte `hostio:"outs"`
}

// WriteResult sets the program's return data.
type WriteResult struct {
	Result []byte `hostio:"args"`
}

// ExitEarly terminates the program with a status, keeping the return data written so far.
type ExitEarly struct {
	Status uint32 `hostio:"args"`
}

// StorageLoadBytes32 reads a storage slot.
type StorageLoadBytes32 struct {
	Key   common.Hash `hostio:"args"`
	Value common.Hash `hostio:"outs"`
}

// StorageCacheBytes32 writes a storage slot into the storage cache.
type StorageCacheBytes32 struct {
	Key   common.Hash `hostio:"args"`
	Value common.Hash `hostio:"args"`
}

// StorageFlushCache persists the storage cache, optionally clearing it.
type StorageFlushCache struct {
	Clear uint8 `hostio:"args"`
}

// StorageStoreBytes32 writes a storage slot directly. Only emitted by older tracers.
type StorageStoreBytes32 struct {
	Key   common.Hash `hostio:"args"`
	Value common.Hash `hostio:"args"`
}

// TransientLoadBytes32 reads a transient storage slot.
type TransientLoadBytes32 struct {
	Key   common.Hash `hostio:"args"`
	Value common.Hash `hostio:"outs"`
}

// TransientStoreBytes32 writes a transient storage slot.
type TransientStoreBytes32 struct {
	Key   common.Hash `hostio:"args"`
	Value common.Hash `hostio:"args"`
}

// AccountBalance reads the balance of an account.
type AccountBalance struct {
	Address common.Address `hostio:"args"`
	Balance uint256.Int    `hostio:"outs"`
}

// AccountCode reads a window of an account's code.
type AccountCode struct {
	Address common.Address `hostio:"args"`
	Offset  uint32         `hostio:"args"`
	Size    uint32         `hostio:"args"`
	Code    []byte         `hostio:"outs"`
}

// AccountCodeSize reads the code size of an account.
type AccountCodeSize struct {
	Address common.Address `hostio:"args"`
	Size    uint32         `hostio:"outs"`
}

// AccountCodehash reads the code hash of an account.
type AccountCodehash struct {
	Address  common.Address `hostio:"args"`
	Codehash common.Hash    `hostio:"outs"`
}

type BlockBasefee struct {
	Basefee uint256.Int `hostio:"outs"`
}

type BlockCoinbase struct {
	Coinbase common.Address `hostio:"outs"`
}

type BlockGasLimit struct {
	GasLimit uint64 `hostio:"outs"`
}

type BlockNumber struct {
	Number uint64 `hostio:"outs"`
}

type BlockTimestamp struct {
	Timestamp uint64 `hostio:"outs"`
}

type ChainID struct {
	ChainID uint64 `hostio:"outs"`
}

type ContractAddress struct {
	Address common.Address `hostio:"outs"`
}

type EvmGasLeft struct {
	GasLeft uint64 `hostio:"outs"`
}

type EvmInkLeft struct {
	InkLeft uint64 `hostio:"outs"`
}

// MathDiv is a 256-bit division performed by the host.
type MathDiv struct {
	A      uint256.Int `hostio:"args"`
	B      uint256.Int `hostio:"args"`
	Result uint256.Int `hostio:"outs"`
}

// MathMod is a 256-bit modulo performed by the host.
type MathMod struct {
	A      uint256.Int `hostio:"args"`
	B      uint256.Int `hostio:"args"`
	Result uint256.Int `hostio:"outs"`
}

// MathPow is a 256-bit exponentiation performed by the host.
type MathPow struct {
	A      uint256.Int `hostio:"args"`
	B      uint256.Int `hostio:"args"`
	Result uint256.Int `hostio:"outs"`
}

// MathAddMod computes (A + B) % C.
type MathAddMod struct {
	A      uint256.Int `hostio:"args"`
	B      uint256.Int `hostio:"args"`
	C      uint256.Int `hostio:"args"`
	Result uint256.Int `hostio:"outs"`
}

// MathMulMod computes (A * B) % C.
type MathMulMod struct {
	A      uint256.Int `hostio:"args"`
	B      uint256.Int `hostio:"args"`
	C      uint256.Int `hostio:"args"`
	Result uint256.Int `hostio:"outs"`
}

// MsgReentrant reports whether the current call is reentrant. Encoded as a u32, non-zero is true.
type MsgReentrant struct {
	Reentrant bool `hostio:"outs"`
}

type MsgSender struct {
	Sender common.Address `hostio:"outs"`
}

type MsgValue struct {
	Value uint256.Int `hostio:"outs"`
}

// NativeKeccak256 hashes a preimage on the host.
type NativeKeccak256 struct {
	Preimage []byte      `hostio:"args"`
	Digest   common.Hash `hostio:"outs"`
}

type TxGasPrice struct {
	GasPrice uint256.Int `hostio:"outs"`
}

type TxInkPrice struct {
	InkPrice uint32 `hostio:"outs"`
}

type TxOrigin struct {
	Origin common.Address `hostio:"outs"`
}

// PayForMemoryGrow charges for growing the program's memory by a number of pages.
type PayForMemoryGrow struct {
	Pages uint16 `hostio:"args"`
}

// CallContract performs a regular call. The nested Frame holds the callee's host calls.
type CallContract struct {
	Address common.Address `hostio:"args"`
	Gas     uint64         `hostio:"args"`
	Value   uint256.Int    `hostio:"args"`
	Data    []byte         `hostio:"args"`
	OutsLen uint32         `hostio:"outs"`
	Status  uint8          `hostio:"outs"`
	Frame   TraceFrame     `hostio:"frame"`
}

// DelegateCallContract performs a delegate call. The nested Frame holds the callee's host calls.
type DelegateCallContract struct {
	Address common.Address `hostio:"args"`
	Gas     uint64         `hostio:"args"`
	Data    []byte         `hostio:"args"`
	OutsLen uint32         `hostio:"outs"`
	Status  uint8          `hostio:"outs"`
	Frame   TraceFrame     `hostio:"frame"`
}

// StaticCallContract performs a static call. The nested Frame holds the callee's host calls.
type StaticCallContract struct {
	Address common.Address `hostio:"args"`
	Gas     uint64         `hostio:"args"`
	Data    []byte         `hostio:"args"`
	OutsLen uint32         `hostio:"outs"`
	Status  uint8          `hostio:"outs"`
	Frame   TraceFrame     `hostio:"frame"`
}

// Create1 deploys a contract with CREATE. The deployed code's execution is not traced.
type Create1 struct {
	Endowment     uint256.Int    `hostio:"args"`
	Code          []byte         `hostio:"args"`
	Address       common.Address `hostio:"outs"`
	RevertDataLen uint32         `hostio:"outs"`
}

// Create2 deploys a contract with CREATE2. The deployed code's execution is not traced.
type Create2 struct {
	Endowment     uint256.Int    `hostio:"args"`
	Salt          common.Hash    `hostio:"args"`
	Code          []byte         `hostio:"args"`
	Address       common.Address `hostio:"outs"`
	RevertDataLen uint32         `hostio:"outs"`
}

// EmitLog emits an EVM log. Data holds the topics followed by the log data.
type EmitLog struct {
	Topics uint32 `hostio:"args"`
	Data   []byte `hostio:"args"`
}

// ReadReturnData copies a window of the last call's return data.
type ReadReturnData struct {
	Offset uint32 `hostio:"args"`
	Size   uint32 `hostio:"args"`
	Data   []byte `hostio:"outs"`
}

type ReturnDataSize struct {
	Size uint32 `hostio:"outs"`
}

// ConsoleLogText is debug text printed by the program.
type ConsoleLogText struct {
	Text []byte `hostio:"args"`
}

// ConsoleLog is a debug value printed by the program, rendered by the tracer as text.
type ConsoleLog struct {
	Text string `hostio:"args"`
}

// EvmCall is a host call whose name starts with "evm_" but is otherwise unknown. Its buffers are kept verbatim.
type EvmCall struct {
	CallName string     `hostio:"name"`
	Args     []byte     `hostio:"args"`
	Outs     []byte     `hostio:"outs"`
	Frame    TraceFrame `hostio:"frame"`
}

// UnknownHostio is a host call the registry does not know, kept verbatim when unknown names are allowed. Frame is nil
// unless the step carried nested steps.
type UnknownHostio struct {
	CallName string
	Args     []byte
	Outs     []byte
	Frame    *TraceFrame
}

func (*UserEntrypoint) Name() string        { return "user_entrypoint" }
func (*UserReturned) Name() string          { return "user_returned" }
func (*ReadArgs) Name() string              { return "read_args" }
func (*WriteResult) Name() string           { return "write_result" }
func (*ExitEarly) Name() string             { return "exit_early" }
func (*StorageLoadBytes32) Name() string    { return "storage_load_bytes32" }
func (*StorageCacheBytes32) Name() string   { return "storage_cache_bytes32" }
func (*StorageFlushCache) Name() string     { return "storage_flush_cache" }
func (*StorageStoreBytes32) Name() string   { return "storage_store_bytes32" }
func (*TransientLoadBytes32) Name() string  { return "transient_load_bytes32" }
func (*TransientStoreBytes32) Name() string { return "transient_store_bytes32" }
func (*AccountBalance) Name() string        { return "account_balance" }
func (*AccountCode) Name() string           { return "account_code" }
func (*AccountCodeSize) Name() string       { return "account_code_size" }
func (*AccountCodehash) Name() string       { return "account_codehash" }
func (*BlockBasefee) Name() string          { return "block_basefee" }
func (*BlockCoinbase) Name() string         { return "block_coinbase" }
func (*BlockGasLimit) Name() string         { return "block_gas_limit" }
func (*BlockNumber) Name() string           { return "block_number" }
func (*BlockTimestamp) Name() string        { return "block_timestamp" }
func (*ChainID) Name() string               { return "chainid" }
func (*ContractAddress) Name() string       { return "contract_address" }
func (*EvmGasLeft) Name() string            { return "evm_gas_left" }
func (*EvmInkLeft) Name() string            { return "evm_ink_left" }
func (*MathDiv) Name() string               { return "math_div" }
func (*MathMod) Name() string               { return "math_mod" }
func (*MathPow) Name() string               { return "math_pow" }
func (*MathAddMod) Name() string            { return "math_add_mod" }
func (*MathMulMod) Name() string            { return "math_mul_mod" }
func (*MsgReentrant) Name() string          { return "msg_reentrant" }
func (*MsgSender) Name() string             { return "msg_sender" }
func (*MsgValue) Name() string              { return "msg_value" }
func (*NativeKeccak256) Name() string       { return "native_keccak256" }
func (*TxGasPrice) Name() string            { return "tx_gas_price" }
func (*TxInkPrice) Name() string            { return "tx_ink_price" }
func (*TxOrigin) Name() string              { return "tx_origin" }
func (*PayForMemoryGrow) Name() string      { return "pay_for_memory_grow" }
func (*CallContract) Name() string          { return "call_contract" }
func (*DelegateCallContract) Name() string  { return "delegate_call_contract" }
func (*StaticCallContract) Name() string    { return "static_call_contract" }
func (*Create1) Name() string               { return "create1" }
func (*Create2) Name() string               { return "create2" }
func (*EmitLog) Name() string               { return "emit_log" }
func (*ReadReturnData) Name() string        { return "read_return_data" }
func (*ReturnDataSize) Name() string        { return "return_data_size" }
func (*ConsoleLogText) Name() string        { return "console_log_text" }
func (*ConsoleLog) Name() string            { return "console_log" }

// Name returns the recorded host call name.
func (e *EvmCall) Name() string {
	return e.CallName
}

// Name returns the recorded host call name.
func (u *UnknownHostio) Name() string {
	return u.CallName
}

// NestedFrame returns the frame recorded for a call-like host call, or nil if the kind carries none.
func NestedFrame(kind Kind) *TraceFrame {
	switch k := kind.(type) {
	case *CallContract:
		return &k.Frame
	case *DelegateCallContract:
		return &k.Frame
	case *StaticCallContract:
		return &k.Frame
	case *EvmCall:
		return &k.Frame
	case *UnknownHostio:
		return k.Frame
	default:
		return nil
	}
}
