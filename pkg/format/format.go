// Package format defines the binary layout of pak archives.
//
// A pak archive is a sequence of data records (a fixed-width Record header
// followed by the file payload), an index listing every path with the same
// record metadata, and a fixed-size Footer. All integers are little-endian.
package format

const (
	// Magic identifies pak archives. It is stored in the footer.
	Magic uint32 = 0x5A6F12E1
	// VersionMajor is the archive version written to the footer.
	VersionMajor uint32 = 8

	// DefaultMountPoint is the mount point stored at the head of the index.
	DefaultMountPoint = "../../../"

	// HashSize is the width of content and index digests.
	HashSize = 20

	// CompressionNone is the only compression method ever written.
	CompressionNone uint32 = 0

	// EncryptionGUIDSize is the width of the zeroed encryption key guid.
	EncryptionGUIDSize = 16
	// CompressionSlots is the number of compression method name slots.
	CompressionSlots = 5
	// CompressionSlotSize is the width of one compression method name slot.
	CompressionSlotSize = 32
)

// RecordSize is the encoded width of a Record.
const RecordSize = 8 + 8 + 8 + 4 + HashSize + 1 + 4 // 53 bytes

// FooterSize is the encoded width of a Footer.
const FooterSize = EncryptionGUIDSize + 1 + 4 + 4 + 8 + 8 + HashSize +
	CompressionSlots*CompressionSlotSize // 221 bytes

// Record is the metadata block written before each payload and again for
// each index entry. Compressed and uncompressed sizes are both Size; the
// compression method, flags and block size are always zero.
type Record struct {
	// Offset is the archive offset of the record header. It is only
	// meaningful inside the index; data region headers carry zero.
	Offset uint64
	Size   uint64
	Hash   [HashSize]byte
}

// Footer is the fixed trailer of an archive. The encryption guid,
// encrypted flag and compression slots are always written as zeros.
type Footer struct {
	IndexOffset uint64
	IndexSize   uint64
	IndexHash   [HashSize]byte
}
