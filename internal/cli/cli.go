// Package cli implements the command-line interface for micropak.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/eunmann/micropak/internal/logctx"
	"github.com/eunmann/micropak/pkg/catalog"
	"github.com/eunmann/micropak/pkg/fileutil"
	"github.com/eunmann/micropak/pkg/format"
	"github.com/eunmann/micropak/pkg/logging"
	"github.com/eunmann/micropak/pkg/membudget"
	"github.com/eunmann/micropak/pkg/memdiag"
	"github.com/eunmann/micropak/pkg/pakbuild"
	"github.com/eunmann/micropak/pkg/s3fetch"
	"github.com/eunmann/micropak/pkg/source"
)

const usage = "usage: micropak <command> [options]\ncommands: pack"

// Run executes the CLI with the given arguments.
func Run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "pack":
		cfg, err := parsePackFlags(args[1:], stderr)
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		if err != nil {
			return err
		}
		return runPack(ctx, cfg, stdout)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

type packConfig struct {
	source      string
	out         string
	mountPoint  string
	manifest    bool
	catalog     string
	concurrency int
	memBudget   string
	debug       bool
	human       bool
}

// parsePackFlags parses pack arguments. Usage and flag errors are printed
// to stderr; -h returns flag.ErrHelp.
func parsePackFlags(args []string, stderr io.Writer) (*packConfig, error) {
	var cfg packConfig

	fs := flag.NewFlagSet("pack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: micropak pack [flags] SOURCE")
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.out, "out", "", "output archive path or s3://bucket/key (default <dirname>.pak)")
	fs.StringVar(&cfg.mountPoint, "mount-point", format.DefaultMountPoint, "mount point stored in the index")
	fs.BoolVar(&cfg.manifest, "manifest", false, "write a JSON build manifest to <out>.json")
	fs.StringVar(&cfg.catalog, "catalog", "", "write a parquet listing of the index to this path")
	fs.IntVar(&cfg.concurrency, "concurrency", source.DefaultConcurrency, "parallel file reads")
	fs.StringVar(&cfg.memBudget, "mem-budget", "", "memory budget, e.g. 2GiB (default "+membudget.EnvVar+" or 50% of RAM)")
	fs.BoolVar(&cfg.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&cfg.human, "human", false, "human-readable log output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
		return nil, errors.New("a source directory or s3:// prefix is required")
	case 1:
		cfg.source = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected one source, got %d", fs.NArg())
	}

	if cfg.concurrency <= 0 {
		return nil, fmt.Errorf("--concurrency must be positive, got %d", cfg.concurrency)
	}
	if cfg.manifest && s3fetch.IsS3URI(cfg.out) {
		return nil, errors.New("--manifest requires a local --out")
	}
	if s3fetch.IsS3URI(cfg.catalog) {
		return nil, errors.New("--catalog must be a local path")
	}

	return &cfg, nil
}

func runPack(ctx context.Context, cfg *packConfig, stdout io.Writer) error {
	logging.SetPrettyMode(cfg.human)
	log := logctx.NewConfiguredLogger(cfg.debug, cfg.human)
	ctx = logctx.WithLogger(ctx, log)

	budget, err := membudget.Resolve(cfg.memBudget)
	if err != nil {
		return err
	}
	log.Debug().
		Uint64("budget_bytes", budget.Total()).
		Str("budget_source", string(budget.Source())).
		Msg("memory budget")

	var client *s3fetch.Client
	s3Client := func() (*s3fetch.Client, error) {
		if client != nil {
			return client, nil
		}
		c, err := s3fetch.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		client = c
		return client, nil
	}

	src, name, err := openSource(cfg, s3Client)
	if err != nil {
		return err
	}
	out := cfg.out
	if out == "" {
		out = name + ".pak"
	}
	ctx = logctx.WithStr(ctx, "archive", out)

	start := time.Now()

	objs, err := src.List(ctx)
	if err != nil {
		return err
	}
	inputBytes := source.TotalSize(objs)

	release, err := budget.ReserveBuild(inputBytes, len(objs))
	if err != nil {
		return err
	}
	defer release()

	tracker := memdiag.NewTracker(logctx.FromContext(ctx), cfg.debug || memdiag.EnabledFromEnv())
	tracker.SetPhase("load")

	files, err := src.Load(ctx, objs)
	if err != nil {
		return err
	}
	tracker.LogWithBudget("loaded", budget.InUse(), budget.Total())
	logging.PhaseComplete(logctx.FromContext(ctx), "load", time.Since(start)).
		Count("files", int64(len(files))).
		Bytes("input_bytes", int64(inputBytes)).
		Throughput(int64(inputBytes)).
		LogDebug("inputs loaded")

	tracker.SetPhase("build")
	res, err := pakbuild.New(pakbuild.WithMountPoint(cfg.mountPoint)).Build(ctx, files)
	if err != nil {
		return err
	}
	tracker.LogWithBudget("built", budget.InUse(), budget.Total())

	if err := writeArchive(ctx, out, res.Data, s3Client); err != nil {
		return err
	}

	if cfg.manifest {
		m := format.NewManifest(filepath.Base(out), res.Data, res.MountPoint, len(res.Entries), res.Footer)
		if err := format.WriteManifest(out+".json", m); err != nil {
			return err
		}
	}
	if cfg.catalog != "" {
		if err := catalog.Write(cfg.catalog, filepath.Base(out), res.Entries); err != nil {
			return err
		}
	}

	logging.FileCreated(logctx.FromContext(ctx), "pack", time.Since(start)).
		Str("source", cfg.source).
		Count("files", int64(len(res.Entries))).
		Bytes("archive_bytes", int64(len(res.Data))).
		Throughput(int64(inputBytes)).
		Log("archive written")

	fmt.Fprintf(stdout, "Packed %d files to %s\n", len(res.Entries), out)
	return nil
}

// openSource returns the source for cfg.source and the name used for the
// default output file.
func openSource(cfg *packConfig, s3Client func() (*s3fetch.Client, error)) (source.Source, string, error) {
	if s3fetch.IsS3URI(cfg.source) {
		client, err := s3Client()
		if err != nil {
			return nil, "", err
		}
		p, err := s3fetch.NewPrefix(client, cfg.source, cfg.concurrency)
		if err != nil {
			return nil, "", err
		}
		return p, p.Name(), nil
	}

	abs, err := filepath.Abs(cfg.source)
	if err != nil {
		return nil, "", fmt.Errorf("resolve source dir: %w", err)
	}
	return source.NewDir(abs, cfg.concurrency), filepath.Base(abs), nil
}

func writeArchive(ctx context.Context, out string, data []byte, s3Client func() (*s3fetch.Client, error)) error {
	if s3fetch.IsS3URI(out) {
		client, err := s3Client()
		if err != nil {
			return err
		}
		return client.Upload(ctx, out, data)
	}

	if _, err := fileutil.CleanupTmpFiles(ctx, out); err != nil {
		return err
	}
	if err := fileutil.WriteFile(out, data); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}
