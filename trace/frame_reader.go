package trace

// toleratedHostios are bookkeeping calls that the live execution may or may not issue. They are skipped when they are
// at the front of the recording and do not match the requested call.
var toleratedHostios = map[string]struct{}{
	"pay_for_memory_grow": {},
	"user_entrypoint":     {},
	"user_returned":       {},
}

// IsTolerated reports whether the host call is a bookkeeping call that may be skipped during replay.
func IsTolerated(name string) bool {
	_, ok := toleratedHostios[name]
	return ok
}

// FrameReader is a cursor over the recorded host calls of one frame. It is not safe for concurrent use; the replay
// harness serializes access to it.
type FrameReader struct {
	frame *TraceFrame
	steps []Hostio
	next  int
}

// NewFrameReader creates a cursor positioned at the first step of frame.
func NewFrameReader(frame *TraceFrame) *FrameReader {
	steps := make([]Hostio, len(frame.Steps))
	copy(steps, frame.Steps)
	return &FrameReader{frame: frame, steps: steps}
}

// Frame returns the frame being read.
func (r *FrameReader) Frame() *TraceFrame {
	return r.frame
}

// Remaining returns the number of steps not yet consumed.
func (r *FrameReader) Remaining() int {
	return len(r.steps) - r.next
}

// Position returns the index of the next step to be consumed.
func (r *FrameReader) Position() int {
	return r.next
}

// Peek returns the next step without consuming it.
func (r *FrameReader) Peek() (Hostio, bool) {
	if r.next >= len(r.steps) {
		return Hostio{}, false
	}
	return r.steps[r.next], true
}

// PeekFor returns the step NextHostio(name) would reach first: tolerated calls not named name are passed over. It
// reports false when only such tolerated calls remain.
func (r *FrameReader) PeekFor(name string) (Hostio, bool) {
	for i := r.next; i < len(r.steps); i++ {
		h := r.steps[i]
		if h.Name() == name || !IsTolerated(h.Name()) {
			return h, true
		}
	}
	return Hostio{}, false
}

// NextHostio consumes and returns the next recorded host call named expected. Tolerated bookkeeping calls that do
// not match are skipped. Any other mismatch, or an exhausted recording, yields a *DivergenceError; the mismatching
// step is consumed.
func (r *FrameReader) NextHostio(expected string) (Hostio, error) {
	for r.next < len(r.steps) {
		h := r.steps[r.next]
		position := r.next
		r.next++

		if h.Name() == expected {
			return h, nil
		}
		if IsTolerated(h.Name()) {
			continue
		}
		return Hostio{}, &DivergenceError{
			FrameAddress: r.frame.Address,
			Expected:     expected,
			Actual:       &h,
			Position:     position,
		}
	}
	return Hostio{}, &DivergenceError{
		FrameAddress: r.frame.Address,
		Expected:     expected,
		Position:     len(r.steps),
	}
}

// Finish verifies that every recorded call was consumed once the live execution has completed. Trailing tolerated
// calls are ignored; the first remaining non-tolerated call is reported as a *DivergenceError.
func (r *FrameReader) Finish() error {
	for i := r.next; i < len(r.steps); i++ {
		h := r.steps[i]
		if IsTolerated(h.Name()) {
			continue
		}
		return &DivergenceError{
			FrameAddress: r.frame.Address,
			Expected:     h.Name(),
			Actual:       &h,
			Unconsumed:   true,
			Position:     i,
		}
	}
	r.next = len(r.steps)
	return nil
}
