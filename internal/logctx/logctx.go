// Package logctx carries a zerolog logger through context.Context.
//
// The CLI attaches a configured logger once; library code such as the
// archive builder pulls it back out with FromContext and enriches it with
// per-operation fields:
//
//	ctx = logctx.WithLogger(ctx, logctx.NewConfiguredLogger(debug, human))
//	ctx = logctx.WithStr(ctx, "archive", "Game.pak")
//	log := logctx.FromContext(ctx)
package logctx

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

var (
	defaultLogger     zerolog.Logger
	defaultLoggerOnce sync.Once
)

// DefaultLogger returns the logger used when a context carries none.
// It writes JSON to stderr with timestamps.
func DefaultLogger() zerolog.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	})
	return defaultLogger
}

// WithLogger returns a copy of ctx carrying logger. A nil ctx is treated
// as context.Background().
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger carried by ctx, or DefaultLogger.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return DefaultLogger()
	}
	if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return logger
	}
	return DefaultLogger()
}

// WithStr returns a context whose logger has the string field added.
func WithStr(ctx context.Context, key, value string) context.Context {
	return WithLogger(ctx, FromContext(ctx).With().Str(key, value).Logger())
}

// WithInt returns a context whose logger has the int field added.
func WithInt(ctx context.Context, key string, value int) context.Context {
	return WithLogger(ctx, FromContext(ctx).With().Int(key, value).Logger())
}

// NewConfiguredLogger builds the process logger. debug lowers the level to
// Debug; human switches from JSON to a console writer.
func NewConfiguredLogger(debug, human bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	var output zerolog.LevelWriter
	if human {
		output = zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}}
	} else {
		output = zerolog.LevelWriterAdapter{Writer: os.Stderr}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
