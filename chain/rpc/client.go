package rpc

import (
	"encoding/json"
	"sync"

	"github.com/crytic/medusa-geth/rpc"
	"github.com/pkg/errors"
	"golang.org/x/net/context"
)

// Client is a JSON-RPC client that collapses identical in-flight requests into a single network call. Failed requests
// are reported to every waiter and are never retried.
type Client struct {
	rpcClient *rpc.Client

	inflightRequests map[requestKey]*inflightRequest
	inflightLock     sync.Mutex

	endpoint string
}

// NewClient dials the node at endpoint.
func NewClient(ctx context.Context, endpoint string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", endpoint)
	}
	return NewClientWithRPC(rpcClient, endpoint), nil
}

// NewClientWithRPC wraps an existing geth RPC client. The endpoint is only used for diagnostics.
func NewClientWithRPC(rpcClient *rpc.Client, endpoint string) *Client {
	return &Client{
		rpcClient:        rpcClient,
		inflightRequests: make(map[requestKey]*inflightRequest),
		endpoint:         endpoint,
	}
}

// Endpoint returns the URL the client is connected to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// RPC returns the underlying geth RPC client.
func (c *Client) RPC() *rpc.Client {
	return c.rpcClient
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.rpcClient.Close()
}

// ExecuteRequestBlocking executes method and decodes its result into result, blocking until it is available.
func (c *Client) ExecuteRequestBlocking(ctx context.Context, result any, method string, args ...any) error {
	pending, err := c.ExecuteRequestAsync(ctx, method, args...)
	if err != nil {
		return err
	}
	return pending.GetResultBlocking(result)
}

// ExecuteRequestAsync starts method in the background and returns a handle to its result. If an identical request is
// already in flight, the handle waits on that request instead.
func (c *Client) ExecuteRequestAsync(ctx context.Context, method string, args ...any) (*PendingResult, error) {
	key, err := makeRequestKey(method, args...)
	if err != nil {
		return nil, err
	}

	c.inflightLock.Lock()
	defer c.inflightLock.Unlock()
	if inflight, exists := c.inflightRequests[key]; exists {
		return newPendingResult(ctx, inflight), nil
	}

	inflight := &inflightRequest{
		Done:    make(chan struct{}),
		Context: ctx,
	}
	c.inflightRequests[key] = inflight
	go c.launchRequest(key, inflight, method, args...)
	return newPendingResult(ctx, inflight), nil
}

func (c *Client) launchRequest(key requestKey, request *inflightRequest, method string, args ...any) {
	var result json.RawMessage
	err := c.rpcClient.CallContext(request.Context, &result, method, args...)

	// Forget the request before waking the waiters so that later calls hit the network again
	c.inflightLock.Lock()
	delete(c.inflightRequests, key)
	c.inflightLock.Unlock()

	if err != nil {
		request.Error = &RequestError{Method: method, Err: err}
	} else {
		request.Result = result
	}
	close(request.Done)
}
