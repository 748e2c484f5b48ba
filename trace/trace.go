package trace

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/crytic/stylus-replay/logging"
)

// NativeTracerName is the name of the tracer built into Nitro nodes that records Stylus host calls.
const NativeTracerName = "stylusTracer"

// TracerOptions selects the tracer used by debug_traceTransaction and debug_traceCall.
type TracerOptions struct {
	// UseNative selects the node's built-in stylusTracer.
	UseNative bool
	// Script is the source of a JavaScript tracer, used when UseNative is false.
	Script string
	// Timeout is an optional tracer timeout in Go duration syntax, e.g. "30s".
	Timeout string
}

// Tracer returns the value of the "tracer" parameter.
func (o TracerOptions) Tracer() string {
	if o.UseNative {
		return NativeTracerName
	}
	return o.Script
}

// MarshalJSON encodes the options as the tracer config object expected by the debug namespace.
func (o TracerOptions) MarshalJSON() ([]byte, error) {
	config := map[string]string{"tracer": o.Tracer()}
	if o.Timeout != "" {
		config["timeout"] = o.Timeout
	}
	return json.Marshal(config)
}

// TransactionInfo is the subset of a mined transaction needed to replay it.
type TransactionInfo struct {
	// Hash is the transaction hash.
	Hash common.Hash
	// To is the called address. Nil for contract creations.
	To *common.Address
	// Input is the transaction calldata.
	Input []byte
	// BlockNumber is the block the transaction was mined in.
	BlockNumber uint64
	// Status is the receipt status.
	Status uint64
}

// CallArgs describes a call to simulate with debug_traceCall.
type CallArgs struct {
	From     *common.Address `json:"from,omitempty"`
	To       *common.Address `json:"to,omitempty"`
	Gas      *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Data     hexutil.Bytes   `json:"data,omitempty"`
}

// NewCallArgs builds CallArgs from optional values. Zero values are omitted.
func NewCallArgs(from *common.Address, to *common.Address, gas uint64, gasPrice *big.Int, value *big.Int, data []byte) CallArgs {
	args := CallArgs{From: from, To: to, Data: data}
	if gas != 0 {
		g := hexutil.Uint64(gas)
		args.Gas = &g
	}
	if gasPrice != nil {
		args.GasPrice = (*hexutil.Big)(gasPrice)
	}
	if value != nil {
		args.Value = (*hexutil.Big)(value)
	}
	return args
}

// Provider is the node access needed to acquire traces.
type Provider interface {
	// Transaction returns the mined transaction and its receipt status.
	Transaction(ctx context.Context, hash common.Hash) (*TransactionInfo, error)
	// TraceTransaction runs debug_traceTransaction and returns the raw tracer output.
	TraceTransaction(ctx context.Context, hash common.Hash, tracer TracerOptions) (json.RawMessage, error)
	// TraceCall runs debug_traceCall against the latest block and returns the raw tracer output.
	TraceCall(ctx context.Context, call CallArgs, tracer TracerOptions) (json.RawMessage, error)
}

// Trace is an acquired and parsed trace.
type Trace struct {
	// TopFrame is the frame of the top-level program invocation.
	TopFrame *TraceFrame
	// Tx is the traced transaction. Nil for simulations.
	Tx *TransactionInfo
	// Call is the simulated call. Nil for transactions.
	Call *CallArgs
	// JSON is the raw tracer output.
	JSON json.RawMessage
}

// Reader returns a cursor over the top-level frame.
func (t *Trace) Reader() *FrameReader {
	return t.TopFrame.Reader()
}

// Input returns the calldata of the traced transaction or simulated call.
func (t *Trace) Input() []byte {
	if t.Tx != nil {
		return t.Tx.Input
	}
	if t.Call != nil {
		return t.Call.Data
	}
	return nil
}

// Fetch acquires the trace of a mined transaction. The top-level frame is executed at the transaction's to address.
// Errors are returned immediately; nothing is retried.
func Fetch(ctx context.Context, provider Provider, hash common.Hash, tracer TracerOptions, opts ParseOptions) (*Trace, error) {
	logger := logging.GlobalLogger.NewSubLogger("module", logging.TRACE_SERVICE)

	tx, err := provider.Transaction(ctx, hash)
	if err != nil {
		return nil, &AcquisitionError{Op: "get transaction", Hash: &hash, Err: err}
	}
	logger.Debug("Tracing tx ", hash.Hex(), " mined in block ", tx.BlockNumber, " with tracer ", tracerLabel(tracer))

	raw, err := provider.TraceTransaction(ctx, hash, tracer)
	if err != nil {
		return nil, &AcquisitionError{Op: "debug_traceTransaction", Hash: &hash, Err: err}
	}

	frame, err := ParseTrace(tx.To, raw, withUnknownLogging(opts, logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("Parsed ", frame.Count(), " hostios for tx ", hash.Hex())
	return &Trace{TopFrame: frame, Tx: tx, JSON: raw}, nil
}

// Simulate acquires the trace of a call simulated against the latest block. The top-level frame has no address.
func Simulate(ctx context.Context, provider Provider, call CallArgs, tracer TracerOptions, opts ParseOptions) (*Trace, error) {
	logger := logging.GlobalLogger.NewSubLogger("module", logging.TRACE_SERVICE)
	logger.Debug("Simulating call with tracer ", tracerLabel(tracer))

	raw, err := provider.TraceCall(ctx, call, tracer)
	if err != nil {
		return nil, &AcquisitionError{Op: "debug_traceCall", Err: err}
	}

	frame, err := ParseTrace(nil, raw, withUnknownLogging(opts, logger))
	if err != nil {
		return nil, err
	}
	return &Trace{TopFrame: frame, Call: &call, JSON: raw}, nil
}

func tracerLabel(tracer TracerOptions) string {
	if tracer.UseNative {
		return NativeTracerName
	}
	return "(custom javascript)"
}

// withUnknownLogging warns about every unknown hostio kept during parsing.
func withUnknownLogging(opts ParseOptions, logger *logging.Logger) ParseOptions {
	if opts.OnUnknownHostio != nil {
		return opts
	}
	opts.OnUnknownHostio = func(path string, name string) {
		logger.Warn("Keeping unknown hostio ", name, " at ", path, " as an opaque blob")
	}
	return opts
}
