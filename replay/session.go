package replay

import (
	"io"
	"os"
	"sync"

	"github.com/crytic/stylus-replay/events"
	"github.com/crytic/stylus-replay/logging"
	"github.com/crytic/stylus-replay/trace"
	"github.com/google/uuid"
)

// HostioReplayedEvent is published after a host call has been matched against the recording.
type HostioReplayedEvent struct {
	// SessionID identifies the replay session.
	SessionID uuid.UUID
	// Hostio is the recorded host call that was replayed.
	Hostio trace.Hostio
	// Position is the index of the host call within the replayed frame.
	Position int
}

// InkBracket is the ink recorded around the host call currently being replayed.
type InkBracket struct {
	Start uint64
	End   uint64
}

// Session holds the state of one replay. Host calls from the program reach the recording only through next, which
// serializes them.
type Session struct {
	// ID identifies the session in logs and events.
	ID uuid.UUID
	// HostioReplayed is published for every matched host call. A handler error aborts the replay.
	HostioReplayed events.EventEmitter[HostioReplayedEvent]
	// Console receives the program's console output.
	Console io.Writer

	lock       sync.Mutex
	frame      *trace.TraceFrame
	reader     *trace.FrameReader
	ink        InkBracket
	failure    error
	ledger     *InkLedger
	returnData []byte

	logger *logging.Logger
}

// NewSession creates a session replaying the recorded calls of frame.
func NewSession(frame *trace.TraceFrame) *Session {
	id := uuid.New()
	return &Session{
		ID:      id,
		Console: os.Stdout,
		frame:   frame,
		reader:  frame.Reader(),
		ledger:  NewInkLedger(),
		logger:  logging.GlobalLogger.NewSubLogger("module", logging.REPLAY_SERVICE).NewSubLogger("session", id.String()),
	}
}

// Frame returns the frame being replayed.
func (s *Session) Frame() *trace.TraceFrame {
	return s.frame
}

// next consumes the recorded call named expected. Once the session has failed, every further call returns the first
// failure. HostioReplayed is published after the lock is released so that handlers may use the session accessors.
func (s *Session) next(expected string) (trace.Hostio, int, error) {
	s.lock.Lock()
	if s.failure != nil {
		defer s.lock.Unlock()
		return trace.Hostio{}, 0, s.failure
	}
	h, err := s.reader.NextHostio(expected)
	if err != nil {
		s.failure = err
		s.lock.Unlock()
		return trace.Hostio{}, 0, err
	}
	position := s.reader.Position() - 1
	s.ink = InkBracket{Start: h.StartInk, End: h.EndInk}
	s.ledger.Record(h)
	s.lock.Unlock()

	s.logger.Trace("Replaying ", h.Name(), " at step ", position)
	if err = s.HostioReplayed.Publish(HostioReplayedEvent{SessionID: s.ID, Hostio: h, Position: position}); err != nil {
		return trace.Hostio{}, 0, s.fail(err)
	}
	return h, position, nil
}

// fail records err as the session's failure unless an earlier one exists, and returns the failure.
func (s *Session) fail(err error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.failure == nil {
		s.failure = err
	}
	return s.failure
}

// Failure returns the first failure of the session, if any.
func (s *Session) Failure() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.failure
}

// Ink returns the ink bracket of the most recently replayed host call.
func (s *Session) Ink() InkBracket {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ink
}

// Ledger returns the ink ledger of the session.
func (s *Session) Ledger() *InkLedger {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ledger
}

// ReturnData returns the data the program passed to write_result.
func (s *Session) ReturnData() []byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.returnData
}

func (s *Session) setReturnData(data []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.returnData = data
}

// finish checks that the program issued every recorded call.
func (s *Session) finish() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.failure != nil {
		return s.failure
	}
	if err := s.reader.Finish(); err != nil {
		s.failure = err
		return err
	}
	return nil
}
