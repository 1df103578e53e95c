// Package journal implements the journal scanner / event stream parser:
// the object namer, header codec, event framer, scanner, pluggable event
// decoder, filter pipeline, and the dump/undump byte-range copier for a
// sharded, content-addressed metadata journal.
package journal

import "math"

// StreamOffset is an unsigned 64-bit logical byte offset within the
// journal's virtual address space; dense and monotonically increasing.
type StreamOffset = uint64

// ObjectIndex identifies a shard: StreamOffset / object_size.
type ObjectIndex = uint64

// InfiniteOffset denotes "to end of known journal" as the hi bound of a
// Range.
const InfiniteOffset StreamOffset = math.MaxUint64

// Range is a half-open [Lo, Hi) span of StreamOffsets. Hi == InfiniteOffset
// denotes "to end of known journal".
type Range struct {
	Lo StreamOffset
	Hi StreamOffset
}

// Len returns Hi-Lo, or 0 if Hi is InfiniteOffset (unbounded).
func (r Range) Len() uint64 {
	if r.Hi == InfiniteOffset {
		return 0
	}
	return r.Hi - r.Lo
}
