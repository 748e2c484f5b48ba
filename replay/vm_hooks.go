package replay

import (
	"context"

	"github.com/crytic/stylus-replay/trace"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
)

// VMHooksModule is the import module through which Stylus programs reach their host.
const VMHooksModule = "vm_hooks"

// hostFunction is a named host function implementation, in the form accepted by wazero's WithFunc.
type hostFunction struct {
	name string
	fn   any
}

// vmHooks returns the vm_hooks imports of a Stylus program, each replaying its call from s.
func vmHooks(s *Session) []hostFunction {
	return []hostFunction{
		{"read_args", func(ctx context.Context, m api.Module, dest uint32) {
			c := s.enter(m, "read_args")
			k := c.hostio.Kind.(*trace.ReadArgs)
			c.write(dest, k.Args)
		}},
		{"write_result", func(ctx context.Context, m api.Module, data uint32, length uint32) {
			c := s.enter(m, "write_result")
			k := c.hostio.Kind.(*trace.WriteResult)
			s.setReturnData(c.expectBytes("result", k.Result, data, length))
		}},
		{"exit_early", func(ctx context.Context, m api.Module, status uint32) {
			c := s.enter(m, "exit_early")
			k := c.hostio.Kind.(*trace.ExitEarly)
			expectValue(c, "status", k.Status, status)
			_ = m.CloseWithExitCode(ctx, status)
			panic(sys.NewExitError(status))
		}},
		{"storage_load_bytes32", func(ctx context.Context, m api.Module, key uint32, dest uint32) {
			c := s.enter(m, "storage_load_bytes32")
			k := c.hostio.Kind.(*trace.StorageLoadBytes32)
			c.expectHash("key", k.Key, key)
			c.write(dest, k.Value.Bytes())
		}},
		{"storage_cache_bytes32", func(ctx context.Context, m api.Module, key uint32, value uint32) {
			c := s.enter(m, "storage_cache_bytes32")
			k := c.hostio.Kind.(*trace.StorageCacheBytes32)
			c.expectHash("key", k.Key, key)
			c.expectHash("value", k.Value, value)
		}},
		{"storage_flush_cache", func(ctx context.Context, m api.Module, clear uint32) {
			c := s.enter(m, "storage_flush_cache")
			k := c.hostio.Kind.(*trace.StorageFlushCache)
			expectValue(c, "clear", uint32(k.Clear), clear)
		}},
		{"storage_store_bytes32", func(ctx context.Context, m api.Module, key uint32, value uint32) {
			c := s.enter(m, "storage_store_bytes32")
			k := c.hostio.Kind.(*trace.StorageStoreBytes32)
			c.expectHash("key", k.Key, key)
			c.expectHash("value", k.Value, value)
		}},
		{"transient_load_bytes32", func(ctx context.Context, m api.Module, key uint32, dest uint32) {
			c := s.enter(m, "transient_load_bytes32")
			k := c.hostio.Kind.(*trace.TransientLoadBytes32)
			c.expectHash("key", k.Key, key)
			c.write(dest, k.Value.Bytes())
		}},
		{"transient_store_bytes32", func(ctx context.Context, m api.Module, key uint32, value uint32) {
			c := s.enter(m, "transient_store_bytes32")
			k := c.hostio.Kind.(*trace.TransientStoreBytes32)
			c.expectHash("key", k.Key, key)
			c.expectHash("value", k.Value, value)
		}},
		{"account_balance", func(ctx context.Context, m api.Module, address uint32, dest uint32) {
			c := s.enter(m, "account_balance")
			k := c.hostio.Kind.(*trace.AccountBalance)
			c.expectAddress("address", k.Address, address)
			c.writeWord(dest, k.Balance)
		}},
		{"account_code", func(ctx context.Context, m api.Module, address uint32, offset uint32, size uint32, dest uint32) uint32 {
			c := s.enter(m, "account_code")
			k := c.hostio.Kind.(*trace.AccountCode)
			c.expectAddress("address", k.Address, address)
			expectValue(c, "offset", k.Offset, offset)
			expectValue(c, "size", k.Size, size)
			c.write(dest, k.Code)
			return uint32(len(k.Code))
		}},
		{"account_code_size", func(ctx context.Context, m api.Module, address uint32) uint32 {
			c := s.enter(m, "account_code_size")
			k := c.hostio.Kind.(*trace.AccountCodeSize)
			c.expectAddress("address", k.Address, address)
			return k.Size
		}},
		{"account_codehash", func(ctx context.Context, m api.Module, address uint32, dest uint32) {
			c := s.enter(m, "account_codehash")
			k := c.hostio.Kind.(*trace.AccountCodehash)
			c.expectAddress("address", k.Address, address)
			c.write(dest, k.Codehash.Bytes())
		}},
		{"block_basefee", func(ctx context.Context, m api.Module, dest uint32) {
			c := s.enter(m, "block_basefee")
			c.writeWord(dest, c.hostio.Kind.(*trace.BlockBasefee).Basefee)
		}},
		{"block_coinbase", func(ctx context.Context, m api.Module, dest uint32) {
			c := s.enter(m, "block_coinbase")
			c.write(dest, c.hostio.Kind.(*trace.BlockCoinbase).Coinbase.Bytes())
		}},
		{"block_gas_limit", func(ctx context.Context, m api.Module) uint64 {
			return s.enter(m, "block_gas_limit").hostio.Kind.(*trace.BlockGasLimit).GasLimit
		}},
		{"block_number", func(ctx context.Context, m api.Module) uint64 {
			return s.enter(m, "block_number").hostio.Kind.(*trace.BlockNumber).Number
		}},
		{"block_timestamp", func(ctx context.Context, m api.Module) uint64 {
			return s.enter(m, "block_timestamp").hostio.Kind.(*trace.BlockTimestamp).Timestamp
		}},
		{"chainid", func(ctx context.Context, m api.Module) uint64 {
			return s.enter(m, "chainid").hostio.Kind.(*trace.ChainID).ChainID
		}},
		{"contract_address", func(ctx context.Context, m api.Module, dest uint32) {
			c := s.enter(m, "contract_address")
			c.write(dest, c.hostio.Kind.(*trace.ContractAddress).Address.Bytes())
		}},
		{"evm_gas_left", func(ctx context.Context, m api.Module) uint64 {
			return s.enter(m, "evm_gas_left").hostio.Kind.(*trace.EvmGasLeft).GasLeft
		}},
		{"evm_ink_left", func(ctx context.Context, m api.Module) uint64 {
			return s.enter(m, "evm_ink_left").hostio.Kind.(*trace.EvmInkLeft).InkLeft
		}},
		{"math_div", func(ctx context.Context, m api.Module, value uint32, divisor uint32) {
			c := s.enter(m, "math_div")
			k := c.hostio.Kind.(*trace.MathDiv)
			c.expectWord("a", k.A, value)
			c.expectWord("b", k.B, divisor)
			c.writeWord(value, k.Result)
		}},
		{"math_mod", func(ctx context.Context, m api.Module, value uint32, modulus uint32) {
			c := s.enter(m, "math_mod")
			k := c.hostio.Kind.(*trace.MathMod)
			c.expectWord("a", k.A, value)
			c.expectWord("b", k.B, modulus)
			c.writeWord(value, k.Result)
		}},
		{"math_pow", func(ctx context.Context, m api.Module, value uint32, exponent uint32) {
			c := s.enter(m, "math_pow")
			k := c.hostio.Kind.(*trace.MathPow)
			c.expectWord("a", k.A, value)
			c.expectWord("b", k.B, exponent)
			c.writeWord(value, k.Result)
		}},
		{"math_add_mod", func(ctx context.Context, m api.Module, value uint32, addend uint32, modulus uint32) {
			c := s.enter(m, "math_add_mod")
			k := c.hostio.Kind.(*trace.MathAddMod)
			c.expectWord("a", k.A, value)
			c.expectWord("b", k.B, addend)
			c.expectWord("c", k.C, modulus)
			c.writeWord(value, k.Result)
		}},
		{"math_mul_mod", func(ctx context.Context, m api.Module, value uint32, multiplier uint32, modulus uint32) {
			c := s.enter(m, "math_mul_mod")
			k := c.hostio.Kind.(*trace.MathMulMod)
			c.expectWord("a", k.A, value)
			c.expectWord("b", k.B, multiplier)
			c.expectWord("c", k.C, modulus)
			c.writeWord(value, k.Result)
		}},
		{"msg_reentrant", func(ctx context.Context, m api.Module) uint32 {
			if s.enter(m, "msg_reentrant").hostio.Kind.(*trace.MsgReentrant).Reentrant {
				return 1
			}
			return 0
		}},
		{"msg_sender", func(ctx context.Context, m api.Module, dest uint32) {
			c := s.enter(m, "msg_sender")
			c.write(dest, c.hostio.Kind.(*trace.MsgSender).Sender.Bytes())
		}},
		{"msg_value", func(ctx context.Context, m api.Module, dest uint32) {
			c := s.enter(m, "msg_value")
			c.writeWord(dest, c.hostio.Kind.(*trace.MsgValue).Value)
		}},
		{"native_keccak256", func(ctx context.Context, m api.Module, data uint32, length uint32, output uint32) {
			c := s.enter(m, "native_keccak256")
			k := c.hostio.Kind.(*trace.NativeKeccak256)
			c.expectBytes("preimage", k.Preimage, data, length)
			c.write(output, k.Digest.Bytes())
		}},
		{"tx_gas_price", func(ctx context.Context, m api.Module, dest uint32) {
			c := s.enter(m, "tx_gas_price")
			c.writeWord(dest, c.hostio.Kind.(*trace.TxGasPrice).GasPrice)
		}},
		{"tx_ink_price", func(ctx context.Context, m api.Module) uint32 {
			return s.enter(m, "tx_ink_price").hostio.Kind.(*trace.TxInkPrice).InkPrice
		}},
		{"tx_origin", func(ctx context.Context, m api.Module, dest uint32) {
			c := s.enter(m, "tx_origin")
			c.write(dest, c.hostio.Kind.(*trace.TxOrigin).Origin.Bytes())
		}},
		{"pay_for_memory_grow", func(ctx context.Context, m api.Module, pages uint32) {
			c := s.enterOptional(m, "pay_for_memory_grow")
			if c == nil {
				return
			}
			expectValue(c, "pages", uint32(c.hostio.Kind.(*trace.PayForMemoryGrow).Pages), pages)
		}},
		{"call_contract", func(ctx context.Context, m api.Module, contract uint32, calldata uint32, calldataLen uint32, value uint32, gas uint64, returnDataLen uint32) uint32 {
			c := s.enter(m, "call_contract")
			k := c.hostio.Kind.(*trace.CallContract)
			c.expectAddress("address", k.Address, contract)
			c.expectBytes("data", k.Data, calldata, calldataLen)
			c.expectWord("value", k.Value, value)
			expectValue(c, "gas", k.Gas, gas)
			c.writeUint32(returnDataLen, k.OutsLen)
			return uint32(k.Status)
		}},
		{"delegate_call_contract", func(ctx context.Context, m api.Module, contract uint32, calldata uint32, calldataLen uint32, gas uint64, returnDataLen uint32) uint32 {
			c := s.enter(m, "delegate_call_contract")
			k := c.hostio.Kind.(*trace.DelegateCallContract)
			c.expectAddress("address", k.Address, contract)
			c.expectBytes("data", k.Data, calldata, calldataLen)
			expectValue(c, "gas", k.Gas, gas)
			c.writeUint32(returnDataLen, k.OutsLen)
			return uint32(k.Status)
		}},
		{"static_call_contract", func(ctx context.Context, m api.Module, contract uint32, calldata uint32, calldataLen uint32, gas uint64, returnDataLen uint32) uint32 {
			c := s.enter(m, "static_call_contract")
			k := c.hostio.Kind.(*trace.StaticCallContract)
			c.expectAddress("address", k.Address, contract)
			c.expectBytes("data", k.Data, calldata, calldataLen)
			expectValue(c, "gas", k.Gas, gas)
			c.writeUint32(returnDataLen, k.OutsLen)
			return uint32(k.Status)
		}},
		{"create1", func(ctx context.Context, m api.Module, code uint32, codeLen uint32, endowment uint32, contract uint32, revertDataLen uint32) {
			c := s.enter(m, "create1")
			k := c.hostio.Kind.(*trace.Create1)
			c.expectBytes("code", k.Code, code, codeLen)
			c.expectWord("endowment", k.Endowment, endowment)
			c.write(contract, k.Address.Bytes())
			c.writeUint32(revertDataLen, k.RevertDataLen)
		}},
		{"create2", func(ctx context.Context, m api.Module, code uint32, codeLen uint32, endowment uint32, salt uint32, contract uint32, revertDataLen uint32) {
			c := s.enter(m, "create2")
			k := c.hostio.Kind.(*trace.Create2)
			c.expectBytes("code", k.Code, code, codeLen)
			c.expectWord("endowment", k.Endowment, endowment)
			c.expectHash("salt", k.Salt, salt)
			c.write(contract, k.Address.Bytes())
			c.writeUint32(revertDataLen, k.RevertDataLen)
		}},
		{"emit_log", func(ctx context.Context, m api.Module, data uint32, length uint32, topics uint32) {
			c := s.enter(m, "emit_log")
			k := c.hostio.Kind.(*trace.EmitLog)
			expectValue(c, "topics", k.Topics, topics)
			c.expectBytes("data", k.Data, data, length)
		}},
		{"read_return_data", func(ctx context.Context, m api.Module, dest uint32, offset uint32, size uint32) uint32 {
			c := s.enter(m, "read_return_data")
			k := c.hostio.Kind.(*trace.ReadReturnData)
			expectValue(c, "offset", k.Offset, offset)
			expectValue(c, "size", k.Size, size)
			c.write(dest, k.Data)
			return uint32(len(k.Data))
		}},
		{"return_data_size", func(ctx context.Context, m api.Module) uint32 {
			return s.enter(m, "return_data_size").hostio.Kind.(*trace.ReturnDataSize).Size
		}},
	}
}
