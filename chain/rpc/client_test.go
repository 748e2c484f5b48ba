package rpc

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/crytic/medusa-geth/rpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testService is served under the "test" namespace. Echo blocks until release is closed.
type testService struct {
	calls   atomic.Int32
	release chan struct{}
}

func (s *testService) Echo(value string) string {
	s.calls.Add(1)
	<-s.release
	return value
}

func (s *testService) Fail() error {
	s.calls.Add(1)
	return errors.New("boom")
}

func newTestClient(t *testing.T) (*Client, *testService) {
	service := &testService{release: make(chan struct{})}
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("test", service))
	t.Cleanup(server.Stop)

	client := NewClientWithRPC(rpc.DialInProc(server), "inproc")
	t.Cleanup(client.Close)
	return client, service
}

// TestIdenticalRequestsShareOneCall checks that concurrent identical requests are sent to the node once.
func TestIdenticalRequestsShareOneCall(t *testing.T) {
	client, service := newTestClient(t)
	ctx := context.Background()

	first, err := client.ExecuteRequestAsync(ctx, "test_echo", "hello")
	require.NoError(t, err)
	second, err := client.ExecuteRequestAsync(ctx, "test_echo", "hello")
	require.NoError(t, err)
	close(service.release)

	var wg sync.WaitGroup
	results := make([]string, 2)
	for i, pending := range []*PendingResult{first, second} {
		wg.Add(1)
		go func(i int, pending *PendingResult) {
			defer wg.Done()
			assert.NoError(t, pending.GetResultBlocking(&results[i]))
		}(i, pending)
	}
	wg.Wait()

	assert.Equal(t, []string{"hello", "hello"}, results)
	assert.EqualValues(t, 1, service.calls.Load())
}

// TestCompletedRequestsAreNotCached checks that a request issued after an identical one completed reaches the node.
func TestCompletedRequestsAreNotCached(t *testing.T) {
	client, service := newTestClient(t)
	close(service.release)

	for i := 0; i < 2; i++ {
		var result string
		require.NoError(t, client.ExecuteRequestBlocking(context.Background(), &result, "test_echo", "again"))
		assert.Equal(t, "again", result)
	}
	assert.EqualValues(t, 2, service.calls.Load())
}

// TestErrorsAreNotRetried checks that a failing request is reported once with its method name.
func TestErrorsAreNotRetried(t *testing.T) {
	client, service := newTestClient(t)

	err := client.ExecuteRequestBlocking(context.Background(), nil, "test_fail")
	var requestErr *RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, "test_fail", requestErr.Method)
	assert.Contains(t, err.Error(), "boom")
	assert.EqualValues(t, 1, service.calls.Load())
}

// TestCancelledWaiter checks that a waiter returns its own context error without waiting for the node.
func TestCancelledWaiter(t *testing.T) {
	client, service := newTestClient(t)
	defer close(service.release)

	_, err := client.ExecuteRequestAsync(context.Background(), "test_echo", "slow")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	pending, err := client.ExecuteRequestAsync(ctx, "test_echo", "slow")
	require.NoError(t, err)
	cancel()

	var result string
	assert.ErrorIs(t, pending.GetResultBlocking(&result), context.Canceled)
}
