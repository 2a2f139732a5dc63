package pakbuild

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/eunmann/micropak/pkg/format"
)

// parsedFooter mirrors the fixed trailer of an archive.
type parsedFooter struct {
	Magic       uint32
	Version     uint32
	IndexOffset uint64
	IndexSize   uint64
	IndexHash   [format.HashSize]byte
}

type parsedRecord struct {
	Offset       uint64
	Compressed   uint64
	Uncompressed uint64
	Compression  uint32
	Hash         [format.HashSize]byte
	Flags        byte
	BlockSize    uint32
}

type parsedEntry struct {
	Path   string
	Record parsedRecord
}

type parsedIndex struct {
	MountPoint string
	Entries    []parsedEntry
}

// reader is a minimal cursor over archive bytes used to check layout.
type reader struct {
	t   *testing.T
	buf []byte
	pos int
}

func (r *reader) take(n int) []byte {
	r.t.Helper()
	if r.pos+n > len(r.buf) {
		r.t.Fatalf("read of %d bytes at %d overruns %d", n, r.pos, len(r.buf))
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) u32() uint32 { return binary.LittleEndian.Uint32(r.take(4)) }
func (r *reader) u64() uint64 { return binary.LittleEndian.Uint64(r.take(8)) }

func (r *reader) fstring() string {
	r.t.Helper()
	n := int32(r.u32())
	if n >= 0 {
		b := r.take(int(n))
		if b[len(b)-1] != 0 {
			r.t.Fatalf("narrow string missing terminator")
		}
		return string(b[:len(b)-1])
	}
	units := make([]uint16, -n)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(r.take(2))
	}
	if units[len(units)-1] != 0 {
		r.t.Fatalf("wide string missing terminator")
	}
	return string(utf16.Decode(units[:len(units)-1]))
}

func (r *reader) record() parsedRecord {
	var rec parsedRecord
	rec.Offset = r.u64()
	rec.Compressed = r.u64()
	rec.Uncompressed = r.u64()
	rec.Compression = r.u32()
	copy(rec.Hash[:], r.take(format.HashSize))
	rec.Flags = r.take(1)[0]
	rec.BlockSize = r.u32()
	return rec
}

func parseFooter(t *testing.T, data []byte) parsedFooter {
	t.Helper()
	if len(data) < format.FooterSize {
		t.Fatalf("archive of %d bytes is shorter than a footer", len(data))
	}
	r := &reader{t: t, buf: data, pos: len(data) - format.FooterSize}
	for i, b := range r.take(format.EncryptionGUIDSize + 1) {
		if b != 0 {
			t.Fatalf("guid/encrypted byte %d = %d, want 0", i, b)
		}
	}
	var f parsedFooter
	f.Magic = r.u32()
	f.Version = r.u32()
	f.IndexOffset = r.u64()
	f.IndexSize = r.u64()
	copy(f.IndexHash[:], r.take(format.HashSize))
	for i, b := range r.take(format.CompressionSlots * format.CompressionSlotSize) {
		if b != 0 {
			t.Fatalf("compression slot byte %d = %d, want 0", i, b)
		}
	}
	return f
}

func parseIndex(t *testing.T, data []byte, f parsedFooter) parsedIndex {
	t.Helper()
	end := f.IndexOffset + f.IndexSize
	if end > uint64(len(data)) {
		t.Fatalf("index [%d, %d) beyond archive of %d bytes", f.IndexOffset, end, len(data))
	}
	r := &reader{t: t, buf: data[f.IndexOffset:end]}
	idx := parsedIndex{MountPoint: r.fstring()}
	count := r.u32()
	for range count {
		path := r.fstring()
		idx.Entries = append(idx.Entries, parsedEntry{Path: path, Record: r.record()})
	}
	if r.pos != len(r.buf) {
		t.Fatalf("index has %d trailing bytes", len(r.buf)-r.pos)
	}
	return idx
}

// dataRecord decodes the in-place record at offset and returns it with the
// payload that follows.
func dataRecord(t *testing.T, data []byte, offset uint64) (parsedRecord, []byte) {
	t.Helper()
	r := &reader{t: t, buf: data, pos: int(offset)}
	rec := r.record()
	return rec, r.take(int(rec.Uncompressed))
}
