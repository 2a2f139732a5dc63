// Package source enumerates and loads the files that go into an archive.
//
// Loading happens in two steps so callers can check the total size against
// a memory budget before anything is read: List returns paths and sizes,
// Load reads the listed objects into pakbuild.InputFile values.
package source

import (
	"context"
	"strings"

	"github.com/eunmann/micropak/pkg/pakbuild"
)

// DefaultConcurrency bounds parallel reads when none is configured.
const DefaultConcurrency = 8

// Object is one listed file. Path is the archive path (forward slashes,
// relative to the source root); Key locates the bytes in the backing store.
type Object struct {
	Path string
	Key  string
	Size int64
}

// Source lists and loads archive inputs.
type Source interface {
	List(ctx context.Context) ([]Object, error)
	Load(ctx context.Context, objs []Object) ([]pakbuild.InputFile, error)
}

// TotalSize returns the sum of object sizes.
func TotalSize(objs []Object) uint64 {
	var n uint64
	for _, o := range objs {
		if o.Size > 0 {
			n += uint64(o.Size)
		}
	}
	return n
}

// NormalizePath converts backslash separators to forward slashes.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
