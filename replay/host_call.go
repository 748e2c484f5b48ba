package replay

import (
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/crytic/stylus-replay/trace"
	"github.com/holiman/uint256"
	"github.com/tetratelabs/wazero/api"
)

// hostCall is one intercepted host call matched against its recording. Its helpers abort the call by panicking with a
// typed error, which wazero hands back from the program's entrypoint.
type hostCall struct {
	session  *Session
	hostio   trace.Hostio
	position int
	memory   *guestMemory
}

// enter matches the host call named name against the recording.
func (s *Session) enter(m api.Module, name string) *hostCall {
	h, position, err := s.next(name)
	if err != nil {
		panic(err)
	}
	return &hostCall{session: s, hostio: h, position: position, memory: newGuestMemory(name, m.Memory())}
}

// enterOptional is enter for bookkeeping calls the recording may lack. It returns nil when the next recorded call,
// passing over other bookkeeping calls, is not named name.
func (s *Session) enterOptional(m api.Module, name string) *hostCall {
	s.lock.Lock()
	upcoming, ok := s.reader.PeekFor(name)
	failed := s.failure != nil
	s.lock.Unlock()
	if !failed && (!ok || upcoming.Name() != name) {
		return nil
	}
	return s.enter(m, name)
}

func (c *hostCall) abort(err error) {
	panic(c.session.fail(err))
}

func (c *hostCall) mismatch(field string, expected string, actual string, diff string) {
	c.abort(&MismatchError{
		Hostio:   c.hostio,
		Position: c.position,
		Field:    field,
		Expected: expected,
		Actual:   actual,
		Diff:     diff,
	})
}

func (c *hostCall) read(ptr uint32, length uint32) []byte {
	data, err := c.memory.read(ptr, length)
	if err != nil {
		c.abort(err)
	}
	return data
}

func (c *hostCall) write(ptr uint32, data []byte) {
	if err := c.memory.write(ptr, data); err != nil {
		c.abort(err)
	}
}

func (c *hostCall) writeUint32(ptr uint32, v uint32) {
	if err := c.memory.writeUint32(ptr, v); err != nil {
		c.abort(err)
	}
}

func (c *hostCall) writeWord(ptr uint32, word uint256.Int) {
	data := word.Bytes32()
	c.write(ptr, data[:])
}

func (c *hostCall) expectAddress(field string, recorded common.Address, ptr uint32) {
	live, err := c.memory.readAddress(ptr)
	if err != nil {
		c.abort(err)
	}
	if live != recorded {
		c.mismatch(field, recorded.Hex(), live.Hex(), "")
	}
}

func (c *hostCall) expectHash(field string, recorded common.Hash, ptr uint32) {
	live, err := c.memory.readHash(ptr)
	if err != nil {
		c.abort(err)
	}
	if live != recorded {
		c.mismatch(field, recorded.Hex(), live.Hex(), "")
	}
}

func (c *hostCall) expectWord(field string, recorded uint256.Int, ptr uint32) {
	live, err := c.memory.readWord(ptr)
	if err != nil {
		c.abort(err)
	}
	if !live.Eq(&recorded) {
		c.mismatch(field, recorded.Dec(), live.Dec(), "")
	}
}

// expectBytes compares length bytes at ptr with recorded and returns the live bytes.
func (c *hostCall) expectBytes(field string, recorded []byte, ptr uint32, length uint32) []byte {
	live := c.read(ptr, length)
	if string(live) != string(recorded) {
		c.mismatch(field, hexutil.Encode(recorded), hexutil.Encode(live), bytesDiff(recorded, live))
	}
	return live
}

// expectValue compares a scalar argument with its recorded value.
func expectValue[T comparable](c *hostCall, field string, recorded T, live T) {
	if live != recorded {
		c.mismatch(field, trace.FormatFieldValue(recorded), trace.FormatFieldValue(live), "")
	}
}
