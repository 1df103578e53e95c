package journal

import (
	"encoding/binary"
)

// Magic identifies this on-disk journal format.
const Magic = "cephjournaltool fs journal v1"

const (
	magicFieldLen  = 32                 // fixed-width, NUL-padded slot
	offsetsEndLen  = magicFieldLen + 8*3 // magic + trimmed/expire/write
	headerFixedLen = offsetsEndLen + 16  // + layout.object_size + layout.pool_id
)

// HeaderCorruptReason enumerates why DecodeHeader rejected a header.
type HeaderCorruptReason string

const (
	ReasonTruncated           HeaderCorruptReason = "truncated"
	ReasonBadMagic            HeaderCorruptReason = "bad_magic"
	ReasonInconsistentOffsets HeaderCorruptReason = "inconsistent_offsets"
	ReasonBadLayout           HeaderCorruptReason = "bad_layout"
)

// HeaderCorruptError reports why a header failed to decode or validate.
// Per spec §4.C/§7 this is a data condition: callers record it on the
// HealthReport, they never treat it as an operational failure.
type HeaderCorruptError struct {
	Reason HeaderCorruptReason
}

func (e *HeaderCorruptError) Error() string {
	return "journal: header corrupt: " + string(e.Reason)
}

// Layout is the object-layout descriptor. Striping fields beyond
// ObjectSize and PoolID are opaque to the scanner and not modeled here.
type Layout struct {
	ObjectSize uint64
	PoolID     int64
}

// Header is the persistent journal header (spec §3).
type Header struct {
	Magic      string
	TrimmedPos StreamOffset
	ExpirePos  StreamOffset
	WritePos   StreamOffset
	Layout     Layout
}

// Valid checks the trimmed_pos <= expire_pos <= write_pos invariant.
func (h Header) Valid() bool {
	return h.TrimmedPos <= h.ExpirePos && h.ExpirePos <= h.WritePos
}

// DecodeHeader decodes and validates a fixed journal header. On any
// structural or invariant failure it returns a *HeaderCorruptError; that
// error is a data condition, never a signal to abort the scan.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < offsetsEndLen {
		return Header{}, &HeaderCorruptError{Reason: ReasonTruncated}
	}
	if len(b) < headerFixedLen {
		return Header{}, &HeaderCorruptError{Reason: ReasonBadLayout}
	}

	magicRaw := b[:magicFieldLen]
	nul := len(magicRaw)
	for i, c := range magicRaw {
		if c == 0 {
			nul = i
			break
		}
	}
	magic := string(magicRaw[:nul])
	if magic != Magic {
		return Header{}, &HeaderCorruptError{Reason: ReasonBadMagic}
	}

	off := magicFieldLen
	trimmed := binary.LittleEndian.Uint64(b[off:])
	off += 8
	expire := binary.LittleEndian.Uint64(b[off:])
	off += 8
	write := binary.LittleEndian.Uint64(b[off:])
	off += 8
	objSize := binary.LittleEndian.Uint64(b[off:])
	off += 8
	poolID := int64(binary.LittleEndian.Uint64(b[off:]))

	h := Header{
		Magic:      magic,
		TrimmedPos: trimmed,
		ExpirePos:  expire,
		WritePos:   write,
		Layout:     Layout{ObjectSize: objSize, PoolID: poolID},
	}
	if !h.Valid() {
		return Header{}, &HeaderCorruptError{Reason: ReasonInconsistentOffsets}
	}
	return h, nil
}

// EncodeHeader encodes h into the fixed on-disk representation.
func EncodeHeader(h Header) []byte {
	b := make([]byte, headerFixedLen)
	copy(b[:magicFieldLen], []byte(h.Magic))
	off := magicFieldLen
	binary.LittleEndian.PutUint64(b[off:], h.TrimmedPos)
	off += 8
	binary.LittleEndian.PutUint64(b[off:], h.ExpirePos)
	off += 8
	binary.LittleEndian.PutUint64(b[off:], h.WritePos)
	off += 8
	binary.LittleEndian.PutUint64(b[off:], h.Layout.ObjectSize)
	off += 8
	binary.LittleEndian.PutUint64(b[off:], uint64(h.Layout.PoolID))
	return b
}
