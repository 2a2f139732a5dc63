package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eunmann/micropak/internal/logctx"
	"github.com/eunmann/micropak/pkg/logging"
	"github.com/eunmann/micropak/pkg/pakbuild"
)

// Dir reads every regular file under Root. Symlinks and other special
// files are skipped; empty directories contribute nothing.
type Dir struct {
	Root string
	// Concurrency bounds parallel file reads (default DefaultConcurrency).
	Concurrency int
}

// NewDir creates a directory source.
func NewDir(root string, concurrency int) *Dir {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Dir{Root: root, Concurrency: concurrency}
}

// List walks Root and returns its regular files with root-relative,
// forward-slash paths. A symlinked Root is followed; symlinks below it
// are not.
func (d *Dir) List(ctx context.Context) ([]Object, error) {
	info, err := os.Stat(d.Root)
	if err != nil {
		return nil, fmt.Errorf("stat source dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", d.Root)
	}

	// WalkDir does not descend into a symlink root.
	root, err := filepath.EvalSymlinks(d.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve source dir: %w", err)
	}

	var objs []Object
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		fi, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}

		objs = append(objs, Object{
			Path: NormalizePath(filepath.ToSlash(rel)),
			Key:  path,
			Size: fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", d.Root, err)
	}

	log := logctx.FromContext(ctx)
	log.Debug().
		Str("root", d.Root).
		Int("files", len(objs)).
		Msg("listed source directory")

	return objs, nil
}

// Load reads objs concurrently. The result has the same order as objs.
// Each completed read is logged at debug level with the running progress.
func (d *Dir) Load(ctx context.Context, objs []Object) ([]pakbuild.InputFile, error) {
	files := make([]pakbuild.InputFile, len(objs))
	progress := logging.NewProgressTracker("load", int64(len(objs)), logctx.FromContext(ctx))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(d.Concurrency, 1))

	for i, obj := range objs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			data, err := os.ReadFile(obj.Key)
			if err != nil {
				return fmt.Errorf("read %s: %w", obj.Key, err)
			}
			// Each goroutine owns its slot.
			files[i] = pakbuild.InputFile{Path: obj.Path, Data: data}
			progress.RecordCompletion(obj.Path, int64(len(data)), time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
