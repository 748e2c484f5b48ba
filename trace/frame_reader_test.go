package trace

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/crytic/medusa-geth/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameOf(t *testing.T, address *common.Address, steps ...string) *TraceFrame {
	frame, err := ParseFrame(address, json.RawMessage("["+strings.Join(steps, ",")+"]"), ParseOptions{})
	require.NoError(t, err)
	return frame
}

// TestNextHostioSkipsTolerated checks that bookkeeping calls are skipped while looking for the requested call.
func TestNextHostioSkipsTolerated(t *testing.T) {
	reader := frameOf(t, nil,
		stepJSON("pay_for_memory_grow", u16(1), "", ""),
		stepJSON("read_args", "", "cafe", ""),
	).Reader()

	h, err := reader.NextHostio("read_args")
	require.NoError(t, err)
	assert.Equal(t, &ReadArgs{Args: []byte{0xca, 0xfe}}, h.Kind)
	assert.Equal(t, 0, reader.Remaining())
}

// TestNextHostioMatchesToleratedWhenRequested checks that tolerated calls are returned when they are requested.
func TestNextHostioMatchesToleratedWhenRequested(t *testing.T) {
	reader := frameOf(t, nil,
		stepJSON("user_entrypoint", u32(3), "", ""),
		stepJSON("pay_for_memory_grow", u16(2), "", ""),
		stepJSON("user_returned", "", u32(0), ""),
	).Reader()

	h, err := reader.NextHostio("user_entrypoint")
	require.NoError(t, err)
	assert.Equal(t, &UserEntrypoint{ArgsLen: 3}, h.Kind)

	h, err = reader.NextHostio("user_returned")
	require.NoError(t, err)
	assert.Equal(t, &UserReturned{Status: 0}, h.Kind)
	require.NoError(t, reader.Finish())
}

// TestNextHostioInOrder checks that repeated requests consume the recording front to back.
func TestNextHostioInOrder(t *testing.T) {
	reader := frameOf(t, nil,
		stepJSON("user_entrypoint", u32(0), "", ""),
		stepJSON("block_number", "", u64(1), ""),
		stepJSON("block_number", "", u64(2), ""),
		stepJSON("msg_sender", "", beefAddress, ""),
	).Reader()

	for _, want := range []Kind{&BlockNumber{Number: 1}, &BlockNumber{Number: 2}} {
		h, err := reader.NextHostio("block_number")
		require.NoError(t, err)
		assert.Equal(t, want, h.Kind)
	}
	assert.Equal(t, 3, reader.Position())
	peeked, ok := reader.Peek()
	require.True(t, ok)
	assert.Equal(t, "msg_sender", peeked.Name())
}

// TestNextHostioMismatch checks the divergence reported for a wrong call inside a call frame.
func TestNextHostioMismatch(t *testing.T) {
	address := common.HexToAddress(deadAddress)
	reader := frameOf(t, &address, stepJSON("msg_sender", "", beefAddress, "")).Reader()

	_, err := reader.NextHostio("storage_load_bytes32")
	var divergence *DivergenceError
	require.ErrorAs(t, err, &divergence)
	assert.Equal(t, "storage_load_bytes32", divergence.Expected)
	require.NotNil(t, divergence.Actual)
	assert.Equal(t, "msg_sender", divergence.Actual.Name())
	assert.False(t, divergence.Unconsumed)

	msg := divergence.Error()
	assert.Contains(t, msg, "call to "+address.Hex())
	assert.Contains(t, msg, "storage_load_bytes32")
	assert.Contains(t, msg, "onchain there's a call to msg_sender")
	assert.Contains(t, msg, common.HexToAddress(beefAddress).Hex())
}

// TestNextHostioExhausted checks the divergence reported when the recording has no more calls.
func TestNextHostioExhausted(t *testing.T) {
	reader := frameOf(t, nil, stepJSON("user_returned", "", u32(0), "")).Reader()

	_, err := reader.NextHostio("msg_sender")
	var divergence *DivergenceError
	require.ErrorAs(t, err, &divergence)
	assert.Nil(t, divergence.Actual)
	assert.Equal(t, "contract deployment", divergence.FrameDescription())
	assert.Contains(t, divergence.Error(), "no such call is made onchain")
	assert.Contains(t, divergence.Error(), "msg_sender")
}

// TestFinishReportsUnconsumed checks that a recorded call never issued by the live execution is a divergence.
func TestFinishReportsUnconsumed(t *testing.T) {
	reader := frameOf(t, nil,
		stepJSON("read_args", "", "", ""),
		stepJSON("storage_load_bytes32", fill("fa", 32), fill("eb", 32), ""),
		stepJSON("user_returned", "", u32(0), ""),
	).Reader()

	_, err := reader.NextHostio("read_args")
	require.NoError(t, err)

	err = reader.Finish()
	var divergence *DivergenceError
	require.ErrorAs(t, err, &divergence)
	assert.True(t, divergence.Unconsumed)
	assert.Equal(t, "storage_load_bytes32", divergence.Expected)
	assert.Equal(t, 1, divergence.Position)
	assert.Contains(t, divergence.Error(), "still expects a call to storage_load_bytes32")
}

// TestFinishIgnoresTrailingTolerated checks that trailing bookkeeping calls do not count as unconsumed.
func TestFinishIgnoresTrailingTolerated(t *testing.T) {
	reader := frameOf(t, nil,
		stepJSON("read_args", "", "", ""),
		stepJSON("pay_for_memory_grow", u16(1), "", ""),
		stepJSON("user_returned", "", u32(0), ""),
	).Reader()

	_, err := reader.NextHostio("read_args")
	require.NoError(t, err)
	assert.NoError(t, reader.Finish())
	assert.Equal(t, 0, reader.Remaining())
}

// TestReaderDoesNotMutateFrame checks that consuming a reader leaves the frame intact for other readers.
func TestReaderDoesNotMutateFrame(t *testing.T) {
	frame := frameOf(t, nil, stepJSON("block_number", "", u64(1), ""))
	first := frame.Reader()
	_, err := first.NextHostio("block_number")
	require.NoError(t, err)

	second := frame.Reader()
	assert.Equal(t, 1, second.Remaining())
	assert.Equal(t, 1, frame.Len())
}

// TestPeekFor checks that the lookahead passes over bookkeeping calls other than the requested one.
func TestPeekFor(t *testing.T) {
	tests := []struct {
		name   string
		steps  []string
		wantOk bool
		want   string
	}{
		{
			name: "grow behind entrypoint",
			steps: []string{
				stepJSON("user_entrypoint", u32(0), "", ""),
				stepJSON("pay_for_memory_grow", u16(5), "", ""),
				stepJSON("user_returned", "", u32(0), ""),
			},
			wantOk: true,
			want:   "pay_for_memory_grow",
		},
		{
			name: "regular call first",
			steps: []string{
				stepJSON("user_entrypoint", u32(0), "", ""),
				stepJSON("msg_sender", "", beefAddress, ""),
				stepJSON("pay_for_memory_grow", u16(5), "", ""),
			},
			wantOk: true,
			want:   "msg_sender",
		},
		{
			name: "only other bookkeeping left",
			steps: []string{
				stepJSON("user_entrypoint", u32(0), "", ""),
				stepJSON("user_returned", "", u32(0), ""),
			},
		},
		{
			name: "empty",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reader := frameOf(t, nil, tc.steps...).Reader()
			h, ok := reader.PeekFor("pay_for_memory_grow")
			require.Equal(t, tc.wantOk, ok)
			if ok {
				assert.Equal(t, tc.want, h.Name())
			}
			assert.Equal(t, 0, reader.Position())
		})
	}
}
