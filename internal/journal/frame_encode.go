package journal

import "encoding/binary"

// EncodeFrame returns the on-wire bytes for a single frame starting at
// startPtr: sentinel | payload_length | payload | start_ptr. It is used
// by tests and by anything constructing journal bytes directly (e.g.
// undump reconstructions in tests).
func EncodeFrame(startPtr StreamOffset, payload []byte) []byte {
	b := make([]byte, frameHeaderLen+len(payload)+frameTrailerLen)
	binary.LittleEndian.PutUint64(b[0:8], FrameSentinel)
	binary.LittleEndian.PutUint32(b[8:12], uint32(len(payload)))
	copy(b[frameHeaderLen:], payload)
	binary.LittleEndian.PutUint64(b[frameHeaderLen+len(payload):], uint64(startPtr))
	return b
}
