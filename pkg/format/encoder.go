package format

import (
	"encoding/binary"
	"unicode/utf16"
)

// Encoder appends archive primitives to a growable byte buffer.
// None of its methods can fail.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder with the given initial capacity.
func NewEncoder(capacity int) *Encoder {
	if capacity < 0 {
		capacity = 0
	}
	return &Encoder{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Bytes returns the encoded bytes. The slice aliases the encoder's buffer
// until the next write.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// WriteU8 writes a single byte.
func (e *Encoder) WriteU8(v byte) {
	e.buf = append(e.buf, v)
}

// WriteU16 writes a uint16 value.
func (e *Encoder) WriteU16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

// WriteU32 writes a uint32 value.
func (e *Encoder) WriteU32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// WriteI32 writes an int32 value in two's complement.
func (e *Encoder) WriteI32(v int32) {
	e.WriteU32(uint32(v))
}

// WriteU64 writes a uint64 value.
func (e *Encoder) WriteU64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// WriteRaw writes b verbatim.
func (e *Encoder) WriteRaw(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteZeros writes n zero bytes.
func (e *Encoder) WriteZeros(n int) {
	for range n {
		e.buf = append(e.buf, 0)
	}
}

// WriteFString writes s as a length-prefixed string.
//
// Pure ASCII strings are written as an int32 length of len(s)+1, the bytes,
// and a NUL. Anything else is written as an int32 length of -(n+1) where n
// is the number of UTF-16 code units, the units themselves, and a 16-bit
// NUL. Both lengths count the terminator.
func (e *Encoder) WriteFString(s string) {
	if IsASCII(s) {
		e.WriteI32(int32(len(s) + 1))
		e.buf = append(e.buf, s...)
		e.WriteU8(0)
		return
	}

	units := utf16.Encode([]rune(s))
	e.WriteI32(-int32(len(units) + 1))
	for _, u := range units {
		e.WriteU16(u)
	}
	e.WriteU16(0)
}

// WriteRecord writes r as a 53-byte record.
func (e *Encoder) WriteRecord(r Record) {
	e.WriteU64(r.Offset)
	e.WriteU64(r.Size) // compressed
	e.WriteU64(r.Size) // uncompressed
	e.WriteU32(CompressionNone)
	e.WriteRaw(r.Hash[:])
	e.WriteU8(0)  // flags
	e.WriteU32(0) // compression block size
}

// WriteFooter writes f as a 221-byte footer.
func (e *Encoder) WriteFooter(f Footer) {
	e.WriteZeros(EncryptionGUIDSize)
	e.WriteU8(0) // encrypted
	e.WriteU32(Magic)
	e.WriteU32(VersionMajor)
	e.WriteU64(f.IndexOffset)
	e.WriteU64(f.IndexSize)
	e.WriteRaw(f.IndexHash[:])
	e.WriteZeros(CompressionSlots * CompressionSlotSize)
}

// IsASCII reports whether every byte of s is at most 127.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

// FStringSize returns the number of bytes WriteFString produces for s.
func FStringSize(s string) int {
	if IsASCII(s) {
		return 4 + len(s) + 1
	}
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return 4 + 2*n + 2
}
