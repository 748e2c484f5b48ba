package rpc

import (
	"context"
	"encoding/json"
	"fmt"
)

/*
PendingResult defines an object that can be returned when calling the RPC asynchronously. It's kind of like a promise as
seen in other languages.
*/
type PendingResult struct {
	ctx     context.Context
	request *inflightRequest
}

func newPendingResult(ctx context.Context, request *inflightRequest) *PendingResult {
	return &PendingResult{
		ctx:     ctx,
		request: request,
	}
}

/*
GetResultBlocking obtains the result from the client, blocking until the result or an error is available. Callers must
pass a pointer to their data through result. If the caller's context is cancelled first, its error is returned.
*/
func (p *PendingResult) GetResultBlocking(result any) error {
	select {
	case <-p.request.Done:
		if p.request.Error != nil {
			return p.request.Error
		}
		if result == nil {
			return nil
		}
		return json.Unmarshal(p.request.Result, result)
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// RequestError is returned when the node rejects a request or cannot be reached.
type RequestError struct {
	Method string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Method, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// requestKey defines a struct that can uniquely identify an Ethereum RPC request for request deduplication purposes.
type requestKey struct {
	Method string
	Args   string
}

func makeRequestKey(method string, args ...any) (requestKey, error) {
	serialized, err := json.Marshal(args)
	if err != nil {
		return requestKey{}, err
	}
	return requestKey{Method: method, Args: string(serialized)}, nil
}

// inflightRequest represents an HTTP-JSON request that is currently traversing the network.
type inflightRequest struct {
	// Done is closed once the request completes, possibly with error.
	Done    chan struct{}
	Error   error
	Result  json.RawMessage
	Context context.Context
}
