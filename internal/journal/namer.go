package journal

import "fmt"

// baseIno is the format constant object indices are offset from; the
// high part of an object name is baseIno+rank.
const baseIno = uint64(0x200)

// ObjectName returns the canonical object name for a given MDS rank and
// object index: "<hex64 ino>.<hex32 index>", index zero-padded to 8
// lowercase hex digits. It is pure and total.
func ObjectName(rank uint32, index ObjectIndex) string {
	ino := baseIno + uint64(rank)
	return fmt.Sprintf("%x.%08x", ino, uint64(index))
}
