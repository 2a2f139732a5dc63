// Package catalog writes a parquet listing of archive entries so that
// tooling can query an archive's contents without decoding it.
package catalog

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/eunmann/micropak/pkg/fileutil"
	"github.com/eunmann/micropak/pkg/pakbuild"
)

// Row is one catalog row. Offset is the start of the file's data record
// in the archive. Hash is the hex of the archive's 20-byte content digest
// (SHA-1 unless the build used pakbuild.WithDigest).
type Row struct {
	Archive string `parquet:"archive,dict"`
	Path    string `parquet:"path"`
	Offset  uint64 `parquet:"offset"`
	Size    uint64 `parquet:"size"`
	Hash    string `parquet:"hash"`
}

// Rows converts build entries to catalog rows, preserving order.
func Rows(archive string, entries []pakbuild.Entry) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			Archive: archive,
			Path:    e.Path,
			Offset:  e.Offset,
			Size:    e.Size,
			Hash:    hex.EncodeToString(e.Hash[:]),
		}
	}
	return rows
}

// Write atomically writes rows for entries to a zstd-compressed parquet
// file at path.
func Write(path, archive string, entries []pakbuild.Entry) error {
	rows := Rows(archive, entries)

	err := fileutil.WriteTmpThenMove(path, func(tmpPath string) error {
		f, err := os.Create(tmpPath)
		if err != nil {
			return err
		}

		w := parquet.NewGenericWriter[Row](f, parquet.Compression(&zstd.Codec{}))
		if _, err := w.Write(rows); err != nil {
			f.Close()
			return err
		}
		if err := w.Close(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
	if err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Read loads every row of a catalog file.
func Read(path string) ([]Row, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return rows, nil
}
