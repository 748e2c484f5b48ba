package replay

import (
	"github.com/crytic/medusa-geth/common"
	"github.com/holiman/uint256"
	"github.com/tetratelabs/wazero/api"
)

// guestMemory is the only accessor of the program's linear memory. Every access is bounds checked and fails with a
// *MemoryAccessError naming the host call that made it.
type guestMemory struct {
	hostio string
	memory api.Memory
}

func newGuestMemory(hostio string, memory api.Memory) *guestMemory {
	return &guestMemory{hostio: hostio, memory: memory}
}

func (g *guestMemory) size() uint32 {
	if g.memory == nil {
		return 0
	}
	return g.memory.Size()
}

func (g *guestMemory) accessError(offset uint32, length uint32, write bool) error {
	return &MemoryAccessError{Hostio: g.hostio, Offset: offset, Length: length, Size: g.size(), Write: write}
}

// read returns a copy of length bytes at offset.
func (g *guestMemory) read(offset uint32, length uint32) ([]byte, error) {
	if g.memory == nil {
		return nil, g.accessError(offset, length, false)
	}
	view, ok := g.memory.Read(offset, length)
	if !ok {
		return nil, g.accessError(offset, length, false)
	}
	// Read returns a view into linear memory which later writes or growth would invalidate
	data := make([]byte, len(view))
	copy(data, view)
	return data, nil
}

func (g *guestMemory) readAddress(offset uint32) (common.Address, error) {
	data, err := g.read(offset, common.AddressLength)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(data), nil
}

func (g *guestMemory) readHash(offset uint32) (common.Hash, error) {
	data, err := g.read(offset, common.HashLength)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(data), nil
}

// readWord reads a big-endian 256-bit word.
func (g *guestMemory) readWord(offset uint32) (uint256.Int, error) {
	data, err := g.read(offset, 32)
	if err != nil {
		return uint256.Int{}, err
	}
	var word uint256.Int
	word.SetBytes32(data)
	return word, nil
}

func (g *guestMemory) write(offset uint32, data []byte) error {
	if g.memory == nil {
		return g.accessError(offset, uint32(len(data)), true)
	}
	if !g.memory.Write(offset, data) {
		return g.accessError(offset, uint32(len(data)), true)
	}
	return nil
}

// writeUint32 writes v in little-endian order, the byte order of wasm integers.
func (g *guestMemory) writeUint32(offset uint32, v uint32) error {
	if g.memory == nil || !g.memory.WriteUint32Le(offset, v) {
		return g.accessError(offset, 4, true)
	}
	return nil
}
