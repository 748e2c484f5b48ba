package replay

import (
	"context"
	"testing"

	"github.com/crytic/medusa-geth/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
)

// newTestMemory instantiates a program with one page of memory and wraps its memory.
func newTestMemory(t *testing.T) *guestMemory {
	ctx := context.Background()
	runtime := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = runtime.Close(ctx) })

	program, err := runtime.Instantiate(ctx, memoryOnlyProgram())
	require.NoError(t, err)
	return newGuestMemory("test_hostio", program.Memory())
}

// TestGuestMemoryBounds checks that accesses straddling the end of memory fail without partial effects.
func TestGuestMemoryBounds(t *testing.T) {
	memory := newTestMemory(t)
	const size = 65536

	tests := []struct {
		name   string
		access func() error
		write  bool
		offset uint32
		length uint32
	}{
		{"read past end", func() error { _, err := memory.read(size-10, 11); return err }, false, size - 10, 11},
		{"read at end", func() error { _, err := memory.read(size, 1); return err }, false, size, 1},
		{"address past end", func() error { _, err := memory.readAddress(size - 19); return err }, false, size - 19, 20},
		{"word past end", func() error { _, err := memory.readWord(size - 31); return err }, false, size - 31, 32},
		{"write past end", func() error { return memory.write(size-1, []byte{1, 2}) }, true, size - 1, 2},
		{"uint32 past end", func() error { return memory.writeUint32(size-3, 7) }, true, size - 3, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.access()
			var memErr *MemoryAccessError
			require.ErrorAs(t, err, &memErr)
			assert.Equal(t, "test_hostio", memErr.Hostio)
			assert.Equal(t, tc.write, memErr.Write)
			assert.Equal(t, tc.offset, memErr.Offset)
			assert.Equal(t, tc.length, memErr.Length)
			assert.EqualValues(t, size, memErr.Size)
		})
	}

	last, err := memory.read(size-2, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, last)
}

// TestGuestMemoryRoundTrip checks typed reads of written values.
func TestGuestMemoryRoundTrip(t *testing.T) {
	memory := newTestMemory(t)
	address := common.HexToAddress("0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddead")

	require.NoError(t, memory.write(100, address.Bytes()))
	read, err := memory.readAddress(100)
	require.NoError(t, err)
	assert.Equal(t, address, read)

	word := make([]byte, 32)
	word[31] = 42
	require.NoError(t, memory.write(200, word))
	value, err := memory.readWord(200)
	require.NoError(t, err)
	assert.EqualValues(t, 42, value.Uint64())

	hash, err := memory.readHash(200)
	require.NoError(t, err)
	assert.Equal(t, common.BytesToHash(word), hash)

	require.NoError(t, memory.writeUint32(300, 0x01020304))
	raw, err := memory.read(300, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 3, 2, 1}, raw)

	// Reads are copies
	raw[0] = 0xff
	again, err := memory.read(300, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, again)
}

// TestGuestMemoryWithoutMemory checks that a program without memory fails every access.
func TestGuestMemoryWithoutMemory(t *testing.T) {
	memory := newGuestMemory("msg_sender", nil)
	var memErr *MemoryAccessError
	assert.ErrorAs(t, memory.write(0, []byte{1}), &memErr)
	_, err := memory.read(0, 1)
	assert.ErrorAs(t, err, &memErr)
	assert.EqualValues(t, 0, memErr.Size)
}
