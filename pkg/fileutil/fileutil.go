// Package fileutil provides atomic file output with tmp+mv semantics.
package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/eunmann/micropak/internal/logctx"
)

// TmpSuffix marks partially written output files.
const TmpSuffix = ".tmp"

// WriteTmpThenMove writes to a temporary file next to outPath, then
// atomically renames it over outPath. writeFunc receives the temporary path
// and must write the complete file. A reader never observes a partial file.
func WriteTmpThenMove(outPath string, writeFunc func(tmpPath string) error) error {
	outDir := filepath.Dir(outPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Same directory as the output so the rename stays on one filesystem.
	tmpPath := outPath + TmpSuffix

	if err := writeFunc(tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := syncFile(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp to final: %w", err)
	}

	return nil
}

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte) error {
	return WriteTmpThenMove(path, func(tmpPath string) error {
		return os.WriteFile(tmpPath, data, 0o644)
	})
}

// syncFile opens, syncs, and closes a file.
func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	err = f.Sync()
	f.Close()
	return err
}

// CleanupTmpFiles removes temp files left next to the given outputs by an
// interrupted WriteTmpThenMove, returning how many were removed.
func CleanupTmpFiles(ctx context.Context, outputs ...string) (int, error) {
	var removed int
	for _, out := range outputs {
		err := os.Remove(out + TmpSuffix)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("remove stale temp file: %w", err)
		}
		removed++
	}

	if removed > 0 {
		log := logctx.FromContext(ctx)
		log.Debug().
			Int("files_removed", removed).
			Msg("cleaned up tmp files")
	}

	return removed, nil
}
