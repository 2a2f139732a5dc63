package format

import "errors"

var (
	// ErrSizeMismatch indicates an archive's size differs from its manifest.
	ErrSizeMismatch = errors.New("archive size mismatch")
	// ErrChecksumMismatch indicates an archive's checksum differs from its manifest.
	ErrChecksumMismatch = errors.New("archive checksum mismatch")
	// ErrManifestVersion indicates an unsupported manifest version.
	ErrManifestVersion = errors.New("unsupported manifest version")
)
