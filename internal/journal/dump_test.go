package journal

import (
	"bytes"
	"context"
	"testing"

	"github.com/rzbill/cephjournaltool/internal/objectstore/localpool"
)

func openTestPool(t *testing.T) *localpool.Pool {
	t.Helper()
	p, err := localpool.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// memFile is an in-memory io.WriterAt/io.ReaderAt standing in for a
// local sparse file in tests.
type memFile struct {
	data []byte
}

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[off:], p)
	return len(p), nil
}

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, m.data[off:])
	return n, nil
}

func TestWriteAndParsePreambleRoundtrip(t *testing.T) {
	f := &memFile{}
	if err := WritePreamble(f, 0, 0x1000, 0x40); err != nil {
		t.Fatalf("write preamble: %v", err)
	}
	if len(f.data) != PreambleLen {
		t.Fatalf("got len %d want %d", len(f.data), PreambleLen)
	}

	start, length, err := ParsePreamble(f.data[:PreambleLen])
	if err != nil {
		t.Fatalf("parse preamble: %v", err)
	}
	if start != 0x1000 || length != 0x40 {
		t.Fatalf("got start=%#x length=%#x", start, length)
	}
}

func TestParsePreambleMissingFieldFails(t *testing.T) {
	b := make([]byte, PreambleLen)
	copy(b, "Ceph mds0 journal dump\n start offset 10 (0xa)\n")
	b[len(b)-1] = 0x04
	_, _, err := ParsePreamble(b)
	if err == nil {
		t.Fatal("expected error for missing length field")
	}
}

func TestDumpThenUndumpRoundtrip(t *testing.T) {
	ctx := context.Background()
	src := openTestPool(t)

	const objSize = 64
	const rank = 0
	// The dumped range starts at object index 4 (stream offset 256): past
	// object 0, which Undump rewrites with the header, and past the
	// PreambleLen-byte preamble at the front of the dump file, so the data
	// overwrites neither.
	const dataIdx = 4
	readPos := StreamOffset(dataIdx * objSize)
	payload := []byte{tagOther, 'h', 'i'}
	frame := EncodeFrame(readPos, payload)

	obj := make([]byte, objSize)
	copy(obj, frame)
	if err := src.WriteFull(ctx, ObjectName(rank, dataIdx), obj); err != nil {
		t.Fatalf("seed object: %v", err)
	}

	writePos := readPos + StreamOffset(len(frame))

	f := &memFile{}
	if err := Dump(ctx, src, rank, objSize, readPos, writePos, f); err != nil {
		t.Fatalf("dump: %v", err)
	}

	dst := openTestPool(t)
	if err := Undump(ctx, dst, rank, 7, objSize, f, f.data[:PreambleLen]); err != nil {
		t.Fatalf("undump: %v", err)
	}

	got, err := dst.Read(ctx, ObjectName(rank, 0))
	if err != nil {
		t.Fatalf("read undumped header object: %v", err)
	}
	h, err := DecodeHeader(got)
	if err != nil {
		t.Fatalf("decode undumped header: %v", err)
	}
	if h.ExpirePos != readPos || h.WritePos != writePos {
		t.Fatalf("got expire=%d write=%d want expire=%d write=%d", h.ExpirePos, h.WritePos, readPos, writePos)
	}
	if h.Layout.PoolID != 7 {
		t.Fatalf("got pool id %d want 7", h.Layout.PoolID)
	}
}

func TestDumpSkipsMissingObjects(t *testing.T) {
	ctx := context.Background()
	pool := openTestPool(t)
	const objSize = 32

	f := &memFile{}
	if err := Dump(ctx, pool, 0, objSize, 0, objSize*2, f); err != nil {
		t.Fatalf("dump: %v", err)
	}
	// Nothing was ever written to the pool; the data region of the dump
	// file should remain untouched beyond the preamble.
	if !bytes.Equal(f.data[PreambleLen:], make([]byte, len(f.data)-PreambleLen)) {
		t.Fatal("expected zeroed data region for fully-missing source")
	}
}
