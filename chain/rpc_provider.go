package chain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/crytic/medusa-geth/ethclient"
	"github.com/crytic/stylus-replay/chain/rpc"
	"github.com/crytic/stylus-replay/logging"
	"github.com/crytic/stylus-replay/trace"
	"github.com/pkg/errors"
)

var _ trace.Provider = (*RPCProvider)(nil)

// ErrTransactionNotFound is returned when the node does not know the requested transaction.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrTransactionPending is returned when the requested transaction has not been mined yet.
var ErrTransactionPending = errors.New("transaction is still pending")

/*
RPCProvider acquires transactions and Stylus traces from a Nitro node over JSON-RPC. Transactions are decoded from the
raw JSON rather than through geth's transaction types, since Arbitrum nodes serve transaction types that geth does not
know about.
*/
type RPCProvider struct {
	client *rpc.Client
	eth    *ethclient.Client
	cache  *txCache
	logger *logging.Logger
}

// NewRPCProvider dials the node at endpoint.
func NewRPCProvider(ctx context.Context, endpoint string) (*RPCProvider, error) {
	client, err := rpc.NewClient(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return NewRPCProviderWithClient(client), nil
}

// NewRPCProviderWithClient creates a provider on top of an existing client.
func NewRPCProviderWithClient(client *rpc.Client) *RPCProvider {
	return &RPCProvider{
		client: client,
		eth:    ethclient.NewClient(client.RPC()),
		cache:  newTxCache(),
		logger: logging.GlobalLogger.NewSubLogger("module", logging.CHAIN_SERVICE),
	}
}

// Close closes the connection to the node.
func (p *RPCProvider) Close() {
	p.client.Close()
}

// ChainID returns the chain ID reported by the node. It is used to confirm that the endpoint is reachable.
func (p *RPCProvider) ChainID(ctx context.Context) (uint64, error) {
	chainID, err := p.eth.ChainID(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to query chain id from %s", p.client.Endpoint())
	}
	return chainID.Uint64(), nil
}

// rpcTransaction is the subset of eth_getTransactionByHash used by the provider.
type rpcTransaction struct {
	Hash        common.Hash     `json:"hash"`
	To          *common.Address `json:"to"`
	Input       hexutil.Bytes   `json:"input"`
	BlockNumber *hexutil.Uint64 `json:"blockNumber"`
}

// rpcReceipt is the subset of eth_getTransactionReceipt used by the provider.
type rpcReceipt struct {
	Status hexutil.Uint64 `json:"status"`
}

/*
Transaction returns the mined transaction with the given hash along with its receipt status. The transaction and its
receipt are requested concurrently.
*/
func (p *RPCProvider) Transaction(ctx context.Context, hash common.Hash) (*trace.TransactionInfo, error) {
	if tx, err := p.cache.Get(hash); err == nil {
		return tx, nil
	}
	p.logger.Trace("eth_getTransactionByHash ", hash.Hex(), " on ", p.client.Endpoint())

	pendingTx, err := p.client.ExecuteRequestAsync(ctx, "eth_getTransactionByHash", hash)
	if err != nil {
		return nil, err
	}
	pendingReceipt, err := p.client.ExecuteRequestAsync(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}

	var tx *rpcTransaction
	if err = pendingTx.GetResultBlocking(&tx); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	if tx.BlockNumber == nil {
		return nil, ErrTransactionPending
	}

	var receipt *rpcReceipt
	if err = pendingReceipt.GetResultBlocking(&receipt); err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("no receipt for mined transaction %s", hash.Hex())
	}

	info := trace.TransactionInfo{
		Hash:        tx.Hash,
		To:          tx.To,
		Input:       tx.Input,
		BlockNumber: uint64(*tx.BlockNumber),
		Status:      uint64(receipt.Status),
	}
	p.cache.Write(info)
	return &info, nil
}

// TraceTransaction runs debug_traceTransaction with the given tracer.
func (p *RPCProvider) TraceTransaction(ctx context.Context, hash common.Hash, tracer trace.TracerOptions) (json.RawMessage, error) {
	p.logger.Trace("debug_traceTransaction ", hash.Hex(), " on ", p.client.Endpoint())

	var result json.RawMessage
	if err := p.client.ExecuteRequestBlocking(ctx, &result, "debug_traceTransaction", hash, tracer); err != nil {
		return nil, err
	}
	return result, nil
}

// TraceCall runs debug_traceCall against the latest block with the given tracer.
func (p *RPCProvider) TraceCall(ctx context.Context, call trace.CallArgs, tracer trace.TracerOptions) (json.RawMessage, error) {
	p.logger.Trace("debug_traceCall on ", p.client.Endpoint())

	var result json.RawMessage
	if err := p.client.ExecuteRequestBlocking(ctx, &result, "debug_traceCall", call, "latest", tracer); err != nil {
		return nil, err
	}
	return result, nil
}
