package journal

import "encoding/binary"

// FrameSentinel is the fixed bit pattern marking the start of an event
// frame on disk.
const FrameSentinel uint64 = 0xc0ffee1a5cafe55e

const (
	frameHeaderLen  = 8 + 4 // sentinel + payload_length
	frameTrailerLen = 8     // start_ptr
	minFrameLen     = frameHeaderLen + frameTrailerLen
)

type framerState int

const (
	stateInFrame framerState = iota
	stateResync
)

// StepKind enumerates the outcomes of a single Framer.Step call.
type StepKind int

const (
	StepNeedMore StepKind = iota
	StepFrame
	StepGapStart
	StepGapEnd
	StepBadFrame
)

// Step is the result of one Framer.Step call.
type Step struct {
	Kind     StepKind
	Offset   StreamOffset // frame/gap-start/bad-frame offset
	GapStart StreamOffset // only set on StepGapEnd: the matching gap's start
	Payload  []byte       // only set on StepFrame
	Event    Event        // only set on StepFrame
}

// Framer is the event-frame state machine described by the scanner: it
// holds a rolling byte buffer paired with the StreamOffset of the
// buffer's first byte, and emits frames or resync signals as bytes are
// fed to it.
type Framer struct {
	buf    []byte
	offset StreamOffset
	state  framerState
	gapStart StreamOffset
	inGap    bool
}

// NewFramer returns a Framer positioned at cursor, in the InFrame state.
func NewFramer(cursor StreamOffset) *Framer {
	return &Framer{offset: cursor, state: stateInFrame}
}

// Cursor returns the StreamOffset of the next byte the framer expects.
func (f *Framer) Cursor() StreamOffset { return f.offset }

// InResync reports whether the framer is currently searching for a
// sentinel after detected corruption.
func (f *Framer) InResync() bool { return f.state == stateResync }

// GapStart returns the StreamOffset the current gap began at, if any.
func (f *Framer) GapStart() (StreamOffset, bool) { return f.gapStart, f.inGap }

// Buffered returns the number of bytes currently held in the rolling
// buffer, for callers enforcing the 2*object_size memory bound.
func (f *Framer) Buffered() int { return len(f.buf) }

// Feed appends bytes read from the object store to the rolling buffer.
func (f *Framer) Feed(b []byte) {
	f.buf = append(f.buf, b...)
}

// DiscardAndAdvance drops any buffered bytes and jumps the cursor to
// newCursor. The scanner calls this when a missing object creates a gap
// that would otherwise straddle the residual buffer (spec §4.E).
func (f *Framer) DiscardAndAdvance(newCursor StreamOffset) {
	f.buf = nil
	f.offset = newCursor
}

// EnterResync forces the Resync state, starting a new gap at gapStart.
// If the framer is already resyncing, the existing gap start is kept
// (the gap did not end and restart).
func (f *Framer) EnterResync(gapStart StreamOffset) {
	if f.state != stateResync {
		f.gapStart = gapStart
		f.inGap = true
		f.state = stateResync
	}
}

// Step advances the state machine as far as the current buffer allows
// and returns the next event. dec decodes frame payloads; a decode
// failure is treated identically to a start_ptr mismatch (spec §4.D.6).
func (f *Framer) Step(dec Decoder) Step {
	if f.state == stateResync {
		return f.stepResync()
	}
	return f.stepInFrame(dec)
}

func (f *Framer) stepInFrame(dec Decoder) Step {
	if len(f.buf) < frameHeaderLen {
		return Step{Kind: StepNeedMore}
	}
	sentinel := binary.LittleEndian.Uint64(f.buf[0:8])
	payloadLen := binary.LittleEndian.Uint32(f.buf[8:12])

	if sentinel != FrameSentinel {
		start := f.offset
		f.EnterResync(start)
		return Step{Kind: StepGapStart, Offset: start}
	}

	total := frameHeaderLen + int(payloadLen) + frameTrailerLen
	if len(f.buf) < total {
		return Step{Kind: StepNeedMore}
	}

	frameStart := f.offset
	payload := f.buf[frameHeaderLen : frameHeaderLen+int(payloadLen)]
	startPtr := binary.LittleEndian.Uint64(f.buf[frameHeaderLen+int(payloadLen):])

	if startPtr != frameStart {
		return f.rejectFrame(frameStart)
	}

	ev, err := dec.Decode(payload)
	if err != nil {
		return f.rejectFrame(frameStart)
	}

	f.buf = f.buf[total:]
	f.offset += StreamOffset(total)
	return Step{Kind: StepFrame, Offset: frameStart, Payload: payload, Event: ev}
}

// rejectFrame handles a bad start_ptr or decode failure: advance one
// byte (byte-granular resync) and enter Resync.
func (f *Framer) rejectFrame(frameStart StreamOffset) Step {
	f.buf = f.buf[1:]
	f.offset++
	f.EnterResync(frameStart)
	return Step{Kind: StepBadFrame, Offset: frameStart}
}

func (f *Framer) stepResync() Step {
	for p := 0; p+8 <= len(f.buf); p++ {
		if binary.LittleEndian.Uint64(f.buf[p:p+8]) != FrameSentinel {
			continue
		}
		candidate := f.offset + StreamOffset(p)

		if p+frameHeaderLen > len(f.buf) {
			return Step{Kind: StepNeedMore}
		}
		payloadLen := binary.LittleEndian.Uint32(f.buf[p+8 : p+frameHeaderLen])
		total := frameHeaderLen + int(payloadLen) + frameTrailerLen
		if p+total > len(f.buf) {
			return Step{Kind: StepNeedMore}
		}
		startPtr := binary.LittleEndian.Uint64(f.buf[p+frameHeaderLen+int(payloadLen):])
		if startPtr != candidate {
			// Coincidental sentinel bit pattern; keep searching.
			continue
		}

		gapStart := f.gapStart
		f.buf = f.buf[p:]
		f.offset = candidate
		f.state = stateInFrame
		f.inGap = false
		return Step{Kind: StepGapEnd, Offset: candidate, GapStart: gapStart}
	}

	// No candidate in the whole buffer: keep the last 7 bytes, a
	// sentinel may straddle the next Feed, and drop the rest to bound
	// memory.
	if len(f.buf) > 7 {
		drop := len(f.buf) - 7
		f.offset += StreamOffset(drop)
		f.buf = f.buf[drop:]
	}
	return Step{Kind: StepNeedMore}
}
