package journal

import (
	"bytes"
	"testing"
)

func TestFramerSingleFrameRoundtrip(t *testing.T) {
	payload := append([]byte{tagUpdate}, []byte("/foo/bar")...)
	frame := EncodeFrame(0x1000, payload)

	f := NewFramer(0x1000)
	f.Feed(frame)

	step := f.Step(DefaultDecoder{})
	if step.Kind != StepFrame {
		t.Fatalf("got kind %v", step.Kind)
	}
	if step.Offset != 0x1000 {
		t.Fatalf("got offset %#x", step.Offset)
	}
	if !bytes.Equal(step.Payload, payload) {
		t.Fatalf("got payload %v want %v", step.Payload, payload)
	}
	if step.Event.TypeTag != "update" {
		t.Fatalf("got tag %q", step.Event.TypeTag)
	}

	next := f.Step(DefaultDecoder{})
	if next.Kind != StepNeedMore {
		t.Fatalf("expected NeedMore after consuming frame, got %v", next.Kind)
	}
}

func TestFramerNeedMoreOnShortHeader(t *testing.T) {
	f := NewFramer(0)
	f.Feed([]byte{1, 2, 3})
	step := f.Step(DefaultDecoder{})
	if step.Kind != StepNeedMore {
		t.Fatalf("got kind %v", step.Kind)
	}
}

func TestFramerNeedMoreOnShortBody(t *testing.T) {
	frame := EncodeFrame(0, []byte("payload"))
	f := NewFramer(0)
	f.Feed(frame[:len(frame)-3])
	step := f.Step(DefaultDecoder{})
	if step.Kind != StepNeedMore {
		t.Fatalf("got kind %v", step.Kind)
	}
}

func TestFramerBadSentinelEntersResync(t *testing.T) {
	f := NewFramer(0)
	f.Feed([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	step := f.Step(DefaultDecoder{})
	if step.Kind != StepGapStart {
		t.Fatalf("got kind %v", step.Kind)
	}
	if !f.InResync() {
		t.Fatal("expected resync state")
	}
}

func TestFramerBadStartPtrEntersResyncAndAdvancesOneByte(t *testing.T) {
	frame := EncodeFrame(0x9999, []byte("x")) // start_ptr deliberately wrong
	f := NewFramer(0)
	f.Feed(frame)
	step := f.Step(DefaultDecoder{})
	if step.Kind != StepBadFrame {
		t.Fatalf("got kind %v", step.Kind)
	}
	if f.Cursor() != 1 {
		t.Fatalf("got cursor %d want 1", f.Cursor())
	}
	if !f.InResync() {
		t.Fatal("expected resync state")
	}
}

func TestFramerResyncFindsNextSentinel(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xAA}, 20)
	good := EncodeFrame(StreamOffset(len(garbage)), []byte("ok"))

	f := NewFramer(0)
	f.Feed(garbage)
	f.Feed(good)

	// First step: no sentinel at cursor 0 -> GapStart, Resync.
	step := f.Step(DefaultDecoder{})
	if step.Kind != StepGapStart {
		t.Fatalf("got kind %v", step.Kind)
	}

	var resynced Step
	for i := 0; i < 64; i++ {
		resynced = f.Step(DefaultDecoder{})
		if resynced.Kind != StepNeedMore {
			break
		}
	}
	if resynced.Kind != StepGapEnd {
		t.Fatalf("got kind %v", resynced.Kind)
	}
	if resynced.Offset != StreamOffset(len(garbage)) {
		t.Fatalf("got resync offset %d want %d", resynced.Offset, len(garbage))
	}

	frameStep := f.Step(DefaultDecoder{})
	if frameStep.Kind != StepFrame {
		t.Fatalf("expected frame after resync, got %v", frameStep.Kind)
	}
}

func TestFramerCoincidentalSentinelInsidePayloadIsIgnored(t *testing.T) {
	payload := make([]byte, 16)
	// Embed the sentinel bit pattern inside the payload body.
	for i := 0; i < 8; i++ {
		payload[4+i] = byte(FrameSentinel >> (8 * i))
	}
	frame := EncodeFrame(0, payload)
	next := EncodeFrame(StreamOffset(len(frame)), []byte("next"))

	f := NewFramer(0)
	f.Feed(frame)
	f.Feed(next)

	step := f.Step(DefaultDecoder{})
	if step.Kind != StepFrame {
		t.Fatalf("got kind %v", step.Kind)
	}
	if !bytes.Equal(step.Payload, payload) {
		t.Fatal("payload mismatch: length prefix should consume the embedded sentinel whole")
	}

	step2 := f.Step(DefaultDecoder{})
	if step2.Kind != StepFrame {
		t.Fatalf("expected second frame decoded normally, got %v", step2.Kind)
	}
}

func TestFramerDecodeFailureTriggersResync(t *testing.T) {
	frame := EncodeFrame(0, []byte{}) // DefaultDecoder rejects empty payload
	f := NewFramer(0)
	f.Feed(frame)
	step := f.Step(DefaultDecoder{})
	if step.Kind != StepBadFrame {
		t.Fatalf("got kind %v", step.Kind)
	}
	if !f.InResync() {
		t.Fatal("expected resync state")
	}
}
