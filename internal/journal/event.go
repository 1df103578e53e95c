package journal

// Event is the result of decoding one frame's payload. It is a tagged
// variant rather than a concrete subtype: callers query Summary instead
// of downcasting (spec design note: no RTTI, no reinterpret_cast).
type Event struct {
	TypeTag string
	Raw     []byte
	Summary *EventSummary
}

// EventSummary carries derived fields exposed by a recognized subset of
// event types. The scanner never assumes any particular field is set.
type EventSummary struct {
	Path  string
	Inode uint64
}

// AsUpdate returns the summary if this event is a recognized "update"
// event, and false otherwise. This is the capability-query pattern the
// design notes ask for in place of downcasting.
func (e Event) AsUpdate() (EventSummary, bool) {
	if e.TypeTag != "update" || e.Summary == nil {
		return EventSummary{}, false
	}
	return *e.Summary, true
}

// DecodeError reports a payload the decoder could not interpret. It is a
// data condition: the framer turns it into a BadFrame and resyncs.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return "journal: event decode failed: " + e.Reason }

// Decoder turns a framed payload into an Event. Implementations must be
// total over the byte range the framer hands them: any rejection is a
// DecodeError, never a panic.
type Decoder interface {
	Decode(payload []byte) (Event, error)
}

// tagUpdate and tagOther are the two type codes the default decoder
// recognizes; any other leading byte is tagged "raw".
const (
	tagUpdate byte = 0x01
	tagOther  byte = 0x02
)

// DefaultDecoder implements a minimal TLV-ish convention: a one-byte
// type code followed by the type-specific body. It exists so the
// scanner and its tests have a concrete, total Decoder; production
// deployments are expected to supply their own.
type DefaultDecoder struct{}

// Decode implements Decoder.
func (DefaultDecoder) Decode(payload []byte) (Event, error) {
	if len(payload) == 0 {
		return Event{}, &DecodeError{Reason: "empty payload"}
	}
	switch payload[0] {
	case tagUpdate:
		path := string(payload[1:])
		return Event{
			TypeTag: "update",
			Raw:     payload,
			Summary: &EventSummary{Path: path},
		}, nil
	case tagOther:
		return Event{TypeTag: "other", Raw: payload}, nil
	default:
		return Event{TypeTag: "raw", Raw: payload}, nil
	}
}
