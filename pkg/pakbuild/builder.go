// Package pakbuild assembles pak archives from in-memory files.
//
// An archive is laid out as:
//
//	record(offset=0) payload   (one per file, sorted by path)
//	mount point, entry count   (index)
//	path record(offset=N)      (one per file, same order)
//	footer
//
// The index hash covers exactly the index bytes, and the footer points at
// them. Building is a pure in-memory transformation; each call owns its
// buffer, so concurrent builds on separate inputs are safe.
package pakbuild

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/eunmann/micropak/internal/logctx"
	"github.com/eunmann/micropak/pkg/format"
	"github.com/eunmann/micropak/pkg/logging"
)

// InputFile is one file to archive. Path must already use forward slashes;
// it is compared as an opaque byte string.
type InputFile struct {
	Path string
	Data []byte
}

// Entry describes one archived file as it appears in the index.
type Entry struct {
	Path   string
	Offset uint64 // start of the file's data record
	Size   uint64
	Hash   [format.HashSize]byte
}

// Result is the outcome of a build.
type Result struct {
	// Data is the complete archive.
	Data []byte
	// Entries are the index entries in archive order.
	Entries    []Entry
	MountPoint string
	Footer     format.Footer
}

// Option configures a Builder.
type Option func(*Builder)

// WithMountPoint sets the mount point stored in the index.
func WithMountPoint(mountPoint string) Option {
	return func(b *Builder) {
		b.mountPoint = mountPoint
	}
}

// WithDigest replaces the SHA-1 content digest.
func WithDigest(d ContentDigest) Option {
	return func(b *Builder) {
		if d != nil {
			b.digest = d
		}
	}
}

// Builder builds archives. A Builder holds only configuration and may be
// reused and shared.
type Builder struct {
	mountPoint string
	digest     ContentDigest
}

// New creates a Builder using format.DefaultMountPoint and SHA1Digest
// unless overridden.
func New(opts ...Option) *Builder {
	b := &Builder{
		mountPoint: format.DefaultMountPoint,
		digest:     SHA1Digest,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Pack builds an archive from files and returns its bytes.
func Pack(files []InputFile, opts ...Option) ([]byte, error) {
	res, err := New(opts...).Build(context.Background(), files)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Build validates and sorts files, then writes data records, the index and
// the footer into a single buffer. ctx is checked between data records.
// On error no partial output is returned.
func (b *Builder) Build(ctx context.Context, files []InputFile) (*Result, error) {
	start := time.Now()
	log := logging.WithPhase(logctx.FromContext(ctx), "pack")

	if err := checkDuplicates(files); err != nil {
		return nil, err
	}

	sorted := slices.Clone(files)
	slices.SortFunc(sorted, func(a, b InputFile) int {
		return strings.Compare(a.Path, b.Path)
	})

	enc := format.NewEncoder(b.encodedSize(sorted))
	entries := make([]Entry, 0, len(sorted))

	for _, f := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e := Entry{
			Path:   f.Path,
			Offset: uint64(enc.Len()),
			Size:   uint64(len(f.Data)),
			Hash:   b.digest(f.Data),
		}
		enc.WriteRecord(format.Record{Size: e.Size, Hash: e.Hash})
		enc.WriteRaw(f.Data)
		entries = append(entries, e)

		log.Debug().
			Str("path", e.Path).
			Uint64("offset", e.Offset).
			Uint64("size", e.Size).
			Msg("wrote data record")
	}

	indexOffset := enc.Len()
	enc.WriteFString(b.mountPoint)
	enc.WriteU32(uint32(len(entries)))
	for _, e := range entries {
		enc.WriteFString(e.Path)
		enc.WriteRecord(format.Record{Offset: e.Offset, Size: e.Size, Hash: e.Hash})
	}

	footer := format.Footer{
		IndexOffset: uint64(indexOffset),
		IndexSize:   uint64(enc.Len() - indexOffset),
		IndexHash:   b.digest(enc.Bytes()[indexOffset:]),
	}
	enc.WriteFooter(footer)

	data := enc.Bytes()
	logging.PhaseComplete(logctx.FromContext(ctx), "pack", time.Since(start)).
		Count("files", int64(len(entries))).
		Bytes("archive_bytes", int64(len(data))).
		Uint64("index_offset", footer.IndexOffset).
		Uint64("index_size", footer.IndexSize).
		LogDebug("archive assembled")

	return &Result{
		Data:       data,
		Entries:    entries,
		MountPoint: b.mountPoint,
		Footer:     footer,
	}, nil
}

// encodedSize returns the exact size of the finished archive.
func (b *Builder) encodedSize(files []InputFile) int {
	n := format.FStringSize(b.mountPoint) + 4 + format.FooterSize
	for _, f := range files {
		n += 2*format.RecordSize + len(f.Data) + format.FStringSize(f.Path)
	}
	return n
}

func checkDuplicates(files []InputFile) error {
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, ok := seen[f.Path]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicatePath, f.Path)
		}
		seen[f.Path] = struct{}{}
	}
	return nil
}
