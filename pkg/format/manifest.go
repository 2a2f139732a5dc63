package format

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/eunmann/micropak/pkg/fileutil"
)

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

// Manifest describes a built archive. It is written next to the archive as
// JSON so tooling can locate the index and check integrity without parsing
// the archive.
type Manifest struct {
	Version      int           `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
	Archive      string        `json:"archive"`
	Size         int64         `json:"size"`
	Checksum     digest.Digest `json:"checksum"` // "sha256:<hex>" of the whole archive
	MountPoint   string        `json:"mount_point"`
	EntryCount   int           `json:"entry_count"`
	IndexOffset  uint64        `json:"index_offset"`
	IndexSize    uint64        `json:"index_size"`
	IndexHash    string        `json:"index_hash"` // hex of the footer index hash
	VersionMajor uint32        `json:"version_major"`
}

// NewManifest fills in the archive-level fields of a manifest from the
// archive bytes and its footer.
func NewManifest(name string, data []byte, mountPoint string, entries int, f Footer) Manifest {
	return Manifest{
		Version:      ManifestVersion,
		CreatedAt:    time.Now().UTC(),
		Archive:      name,
		Size:         int64(len(data)),
		Checksum:     digest.FromBytes(data),
		MountPoint:   mountPoint,
		EntryCount:   entries,
		IndexOffset:  f.IndexOffset,
		IndexSize:    f.IndexSize,
		IndexHash:    hex.EncodeToString(f.IndexHash[:]),
		VersionMajor: VersionMajor,
	}
}

// WriteManifest atomically writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := fileutil.WriteFile(path, data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("%w: %d", ErrManifestVersion, m.Version)
	}
	if err := m.Checksum.Validate(); err != nil {
		return nil, fmt.Errorf("manifest checksum: %w", err)
	}

	return &m, nil
}

// VerifyManifest checks that the archive at path matches the size and
// checksum recorded in m.
func VerifyManifest(path string, m *Manifest) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}

	if stat.Size() != m.Size {
		return fmt.Errorf("archive %s: %w (got %d, want %d)",
			path, ErrSizeMismatch, stat.Size(), m.Size)
	}

	return verifyDigest(path, m.Checksum)
}

// verifyDigest streams the file at path through a verifier for want.
func verifyDigest(path string, want digest.Digest) error {
	if err := want.Validate(); err != nil {
		return fmt.Errorf("manifest checksum: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("checksum %s: %w", path, err)
	}
	defer f.Close()

	v := want.Verifier()
	if _, err := io.Copy(v, f); err != nil {
		return fmt.Errorf("checksum %s: %w", path, err)
	}
	if !v.Verified() {
		return fmt.Errorf("archive %s: %w", path, ErrChecksumMismatch)
	}

	return nil
}
