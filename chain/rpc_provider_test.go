package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/common/hexutil"
	gethrpc "github.com/crytic/medusa-geth/rpc"
	"github.com/crytic/stylus-replay/chain/rpc"
	"github.com/crytic/stylus-replay/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	minedHash   = common.HexToHash("0x01")
	pendingHash = common.HexToHash("0x02")
	program     = common.HexToAddress("0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddead")
)

// ethService serves the eth namespace for a node that knows one mined and one pending transaction.
type ethService struct {
	txRequests int
}

func (s *ethService) ChainId() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(412346))
}

func (s *ethService) GetTransactionByHash(hash common.Hash) map[string]any {
	s.txRequests++
	switch hash {
	case minedHash:
		return map[string]any{"hash": hash, "to": program, "input": "0xcafe", "blockNumber": "0x10", "type": "0x64"}
	case pendingHash:
		return map[string]any{"hash": hash, "to": program, "input": "0x", "blockNumber": nil}
	default:
		return nil
	}
}

func (s *ethService) GetTransactionReceipt(hash common.Hash) map[string]any {
	if hash != minedHash {
		return nil
	}
	return map[string]any{"status": "0x1"}
}

// debugService serves the debug namespace and records the parameters it receives.
type debugService struct {
	tracer    map[string]string
	call      map[string]any
	blockTag  string
	traceJSON json.RawMessage
}

func (s *debugService) TraceTransaction(hash common.Hash, tracer map[string]string) json.RawMessage {
	s.tracer = tracer
	return s.traceJSON
}

func (s *debugService) TraceCall(call map[string]any, blockTag string, tracer map[string]string) json.RawMessage {
	s.call = call
	s.blockTag = blockTag
	s.tracer = tracer
	return s.traceJSON
}

func newTestProvider(t *testing.T) (*RPCProvider, *ethService, *debugService) {
	eth := &ethService{}
	debug := &debugService{traceJSON: json.RawMessage(`[{"name":"msg_sender","args":"0x","outs":"0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddead","startInk":10,"endInk":5}]`)}

	server := gethrpc.NewServer()
	require.NoError(t, server.RegisterName("eth", eth))
	require.NoError(t, server.RegisterName("debug", debug))
	t.Cleanup(server.Stop)

	provider := NewRPCProviderWithClient(rpc.NewClientWithRPC(gethrpc.DialInProc(server), "inproc"))
	t.Cleanup(provider.Close)
	return provider, eth, debug
}

// TestProviderTransaction checks transaction lookup including Arbitrum transaction types, caching and missing transactions.
func TestProviderTransaction(t *testing.T) {
	provider, eth, _ := newTestProvider(t)
	ctx := context.Background()

	tx, err := provider.Transaction(ctx, minedHash)
	require.NoError(t, err)
	assert.Equal(t, &trace.TransactionInfo{Hash: minedHash, To: &program, Input: []byte{0xca, 0xfe}, BlockNumber: 16, Status: 1}, tx)

	_, err = provider.Transaction(ctx, minedHash)
	require.NoError(t, err)
	assert.Equal(t, 1, eth.txRequests)

	_, err = provider.Transaction(ctx, pendingHash)
	assert.ErrorIs(t, err, ErrTransactionPending)

	_, err = provider.Transaction(ctx, common.HexToHash("0x03"))
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	chainID, err := provider.ChainID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 412346, chainID)
}

// TestProviderTraces checks the parameters sent with debug_traceTransaction and debug_traceCall.
func TestProviderTraces(t *testing.T) {
	provider, _, debug := newTestProvider(t)
	ctx := context.Background()

	fetched, err := trace.Fetch(ctx, provider, minedHash, trace.TracerOptions{UseNative: true}, trace.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tracer": "stylusTracer"}, debug.tracer)
	require.Len(t, fetched.TopFrame.Steps, 1)
	assert.Equal(t, &program, fetched.TopFrame.Address)

	call := trace.NewCallArgs(nil, &program, 0, nil, nil, []byte{1})
	_, err = trace.Simulate(ctx, provider, call, trace.TracerOptions{Script: "{result: function() {}}", Timeout: "5s"}, trace.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "latest", debug.blockTag)
	assert.Equal(t, map[string]string{"tracer": "{result: function() {}}", "timeout": "5s"}, debug.tracer)
	assert.Equal(t, "0x01", debug.call["data"])
}
