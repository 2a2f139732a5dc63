package pakbuild

import (
	"crypto/sha1" //nolint:gosec // the archive format mandates SHA-1 digests
	"hash"

	"github.com/eunmann/micropak/pkg/format"
)

// ContentDigest produces the 20-byte digest stored for file contents and
// for the serialized index.
type ContentDigest func(data []byte) [format.HashSize]byte

// SHA1Digest is the digest expected by pak readers.
func SHA1Digest(data []byte) [format.HashSize]byte {
	return sha1.Sum(data) //nolint:gosec // format constant
}

// HashDigest adapts a hash constructor into a ContentDigest. The hash must
// produce format.HashSize bytes; longer sums are truncated.
func HashDigest(newHash func() hash.Hash) ContentDigest {
	return func(data []byte) [format.HashSize]byte {
		h := newHash()
		h.Write(data)
		var out [format.HashSize]byte
		copy(out[:], h.Sum(nil))
		return out
	}
}
