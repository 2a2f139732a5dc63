// Package logging provides structured completion events on top of zerolog.
package logging

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var prettyMode atomic.Bool

// SetPrettyMode toggles human-readable companion fields ("size_h",
// "duration_h", ...) on completion events. The CLI enables it together with
// the console writer.
func SetPrettyMode(on bool) {
	prettyMode.Store(on)
}

// IsPrettyMode reports whether companion fields are emitted.
func IsPrettyMode() bool {
	return prettyMode.Load()
}

// WithPhase returns log with the phase field set.
func WithPhase(log zerolog.Logger, phase string) zerolog.Logger {
	return log.With().Str("phase", phase).Logger()
}
