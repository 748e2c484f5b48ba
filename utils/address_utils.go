package utils

import (
	"encoding/hex"
	"strings"

	"github.com/crytic/medusa-geth/common"
	"github.com/pkg/errors"
)

// decodeFixedHex decodes a hex string (with or without the "0x" prefix) that must be exactly length bytes long.
func decodeFixedHex(s string, length int, what string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return nil, errors.Wrapf(err, "malformed %s %q", what, s)
	}
	if len(b) != length {
		return nil, errors.Errorf("malformed %s %q: expected %d bytes, got %d", what, s, length, len(b))
	}
	return b, nil
}

// HexStringToAddress converts a hex string (with or without the "0x" prefix) to a common.Address. Returns the parsed
// address, or an error if the string is not valid hex or not 20 bytes long.
func HexStringToAddress(s string) (*common.Address, error) {
	b, err := decodeFixedHex(s, common.AddressLength, "address")
	if err != nil {
		return nil, err
	}
	address := common.BytesToAddress(b)
	return &address, nil
}

// HexStringToHash converts a hex string (with or without the "0x" prefix) to a common.Hash, such as a transaction
// hash. Returns an error if the string is not valid hex or not 32 bytes long.
func HexStringToHash(s string) (common.Hash, error) {
	b, err := decodeFixedHex(s, common.HashLength, "hash")
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(b), nil
}
