package utils

import (
	"testing"

	"github.com/crytic/medusa-geth/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexStringToAddress(t *testing.T) {
	want := common.HexToAddress("0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddead")
	for _, s := range []string{"0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddead", "deaddeaddeaddeaddeaddeaddeaddeaddeaddead"} {
		got, err := HexStringToAddress(s)
		require.NoError(t, err)
		assert.Equal(t, want, *got)
	}

	_, err := HexStringToAddress("0xdead")
	assert.ErrorContains(t, err, "expected 20 bytes, got 2")
	_, err = HexStringToAddress("0xzz")
	assert.ErrorContains(t, err, "malformed address")
}

func TestHexStringToHash(t *testing.T) {
	s := "0x" + "ab000000000000000000000000000000000000000000000000000000000000cd"
	got, err := HexStringToHash(s)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(s), got)

	_, err = HexStringToHash("0x01")
	assert.Error(t, err)
}
