package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rzbill/cephjournaltool/internal/objectstore"
)

// PreambleLen is the fixed size of the dump file's textual header.
const PreambleLen = 200

const undumpChunk = 1 << 20 // 1 MiB, spec §4.G streaming chunk size

// ErrPreambleIncomplete is returned by Undump when the preamble is
// missing a required field; per spec §7 nothing is written to the pool
// in that case.
var ErrPreambleIncomplete = errors.New("journal: preamble missing start offset or length field")

// WritePreamble renders the 200-byte dump header at dest offset 0:
//
//	Ceph mds<rank> journal dump
//	 start offset <decimal> (0x<hex>)
//	       length <decimal> (0x<hex>)
//	<0x04>
//
// padded with NUL out to PreambleLen.
func WritePreamble(dest io.WriterAt, rank uint32, start, length StreamOffset) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Ceph mds%d journal dump\n", rank)
	fmt.Fprintf(&buf, " start offset %d (0x%x)\n", start, start)
	fmt.Fprintf(&buf, "       length %d (0x%x)\n", length, length)
	buf.WriteByte(0x04)

	if buf.Len() > PreambleLen {
		return fmt.Errorf("journal: preamble text is %d bytes, exceeds %d", buf.Len(), PreambleLen)
	}
	out := make([]byte, PreambleLen)
	copy(out, buf.Bytes())
	_, err := dest.WriteAt(out, 0)
	return err
}

// ParsePreamble extracts start/length from a raw PreambleLen-byte
// header using a line-oriented scan rather than a positional sscanf,
// per the spec's open-question recommendation: a malformed or
// reordered preamble still parses as long as the two lines are present.
func ParsePreamble(b []byte) (start, length StreamOffset, err error) {
	term := bytes.IndexByte(b, 0x04)
	if term < 0 {
		term = len(b)
	}
	var haveStart, haveLength bool
	for _, line := range strings.Split(string(b[:term]), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "start offset"):
			if v, ok := firstUint(strings.TrimPrefix(line, "start offset")); ok {
				start, haveStart = StreamOffset(v), true
			}
		case strings.HasPrefix(line, "length"):
			if v, ok := firstUint(strings.TrimPrefix(line, "length")); ok {
				length, haveLength = StreamOffset(v), true
			}
		}
	}
	if !haveStart || !haveLength {
		return 0, 0, ErrPreambleIncomplete
	}
	return start, length, nil
}

func firstUint(s string) (uint64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Dump copies the journal's [readPos, writePos) byte range from pool to
// dest, a sparse local file: the preamble occupies the first PreambleLen
// bytes, data is written at its original StreamOffset (dest offset ==
// stream offset), leaving a filesystem hole between the two.
func Dump(ctx context.Context, pool objectstore.Pool, rank uint32, objSize uint64, readPos, writePos StreamOffset, dest io.WriterAt) error {
	if err := WritePreamble(dest, rank, readPos, writePos-readPos); err != nil {
		return err
	}
	if writePos <= readPos {
		return nil
	}

	startIdx := ObjectIndex(readPos / objSize)
	endIdx := ObjectIndex((writePos - 1) / objSize)

	for idx := startIdx; idx <= endIdx; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := pool.Read(ctx, ObjectName(rank, idx))
		if errors.Is(err, objectstore.ErrNotFound) {
			continue // missing source object: leave the destination sparse there too
		}
		if err != nil {
			return err
		}

		objStart := StreamOffset(idx) * objSize
		lo := max(readPos, objStart)
		hi := min(writePos, objStart+StreamOffset(len(data)))
		if hi <= lo {
			continue
		}
		if _, err := dest.WriteAt(data[lo-objStart:hi-objStart], int64(lo)); err != nil {
			return err
		}
	}
	return nil
}

// Undump parses src's preamble, writes a synthetic header reflecting
// [start, start+length) to object index 0, then streams the data region
// back into the pool in undumpChunk-sized reads, reassembling full
// objects for WriteFull (the adapter only exposes whole-object writes).
func Undump(ctx context.Context, pool objectstore.Pool, rank uint32, poolID int64, objSize uint64, src io.ReaderAt, preamble []byte) error {
	start, length, err := ParsePreamble(preamble)
	if err != nil {
		return err
	}
	end := start + length

	header := Header{
		Magic:      Magic,
		TrimmedPos: start,
		ExpirePos:  start,
		WritePos:   end,
		Layout:     Layout{ObjectSize: objSize, PoolID: poolID},
	}
	if err := pool.WriteFull(ctx, ObjectName(rank, 0), EncodeHeader(header)); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}

	curIdx := ObjectIndex(start / objSize)
	curBuf, err := loadOrZero(ctx, pool, rank, curIdx, objSize)
	if err != nil {
		return err
	}

	pos := start
	for pos < end {
		n := undumpChunk
		if remaining := end - pos; remaining < StreamOffset(n) {
			n = int(remaining)
		}
		chunk := make([]byte, n)
		if _, rerr := src.ReadAt(chunk, int64(pos)); rerr != nil && rerr != io.EOF {
			return rerr
		}

		off := 0
		for off < len(chunk) {
			idx := ObjectIndex((pos + StreamOffset(off)) / objSize)
			if idx != curIdx {
				if err := pool.WriteFull(ctx, ObjectName(rank, curIdx), curBuf); err != nil {
					return err
				}
				curIdx = idx
				curBuf, err = loadOrZero(ctx, pool, rank, curIdx, objSize)
				if err != nil {
					return err
				}
			}
			intraOff := int((pos + StreamOffset(off)) % objSize)
			nCopy := len(chunk) - off
			if avail := int(objSize) - intraOff; avail < nCopy {
				nCopy = avail
			}
			copy(curBuf[intraOff:], chunk[off:off+nCopy])
			off += nCopy
		}
		pos += StreamOffset(n)
	}
	return pool.WriteFull(ctx, ObjectName(rank, curIdx), curBuf)
}

// loadOrZero reads an existing object to merge with newly-undumped
// bytes, or returns a zero-filled buffer if the object does not exist.
func loadOrZero(ctx context.Context, pool objectstore.Pool, rank uint32, idx ObjectIndex, objSize uint64) ([]byte, error) {
	data, err := pool.Read(ctx, ObjectName(rank, idx))
	if errors.Is(err, objectstore.ErrNotFound) {
		return make([]byte, objSize), nil
	}
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) >= objSize {
		return data, nil
	}
	buf := make([]byte, objSize)
	copy(buf, data)
	return buf, nil
}
