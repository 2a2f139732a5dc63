package logging

import (
	"time"

	"github.com/eunmann/micropak/pkg/humanfmt"
	"github.com/rs/zerolog"
)

type field struct {
	key string
	val any
}

// CompletionEvent builds a consistent "something finished" log line.
// Fields are emitted in the order they were added.
type CompletionEvent struct {
	log     zerolog.Logger
	event   string
	phase   string
	elapsed time.Duration
	fields  []field
}

// NewCompletionEvent creates a completion event builder.
func NewCompletionEvent(log zerolog.Logger, event, phase string, elapsed time.Duration) *CompletionEvent {
	return &CompletionEvent{
		log:     log,
		event:   event,
		phase:   phase,
		elapsed: elapsed,
	}
}

// PhaseComplete starts a "phase_completed" event.
func PhaseComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, "phase_completed", phase, elapsed)
}

// FileCreated starts a "file_created" event.
func FileCreated(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, "file_created", phase, elapsed)
}

func (ce *CompletionEvent) add(key string, val any) *CompletionEvent {
	ce.fields = append(ce.fields, field{key, val})
	return ce
}

// Str adds a string field.
func (ce *CompletionEvent) Str(key, val string) *CompletionEvent {
	return ce.add(key, val)
}

// Int adds an int field.
func (ce *CompletionEvent) Int(key string, val int) *CompletionEvent {
	return ce.add(key, val)
}

// Uint64 adds a uint64 field.
func (ce *CompletionEvent) Uint64(key string, val uint64) *CompletionEvent {
	return ce.add(key, val)
}

// Bytes adds a byte count, plus key+"_h" in pretty mode.
func (ce *CompletionEvent) Bytes(key string, n int64) *CompletionEvent {
	ce.add(key, n)
	if IsPrettyMode() {
		ce.add(key+"_h", humanfmt.Bytes(n))
	}
	return ce
}

// Count adds an item count, plus key+"_h" in pretty mode.
func (ce *CompletionEvent) Count(key string, n int64) *CompletionEvent {
	ce.add(key, n)
	if IsPrettyMode() {
		ce.add(key+"_h", humanfmt.Count(n))
	}
	return ce
}

// Throughput adds the rate of n bytes over the event's elapsed time.
func (ce *CompletionEvent) Throughput(n int64) *CompletionEvent {
	if ce.elapsed <= 0 {
		return ce
	}
	ce.add("throughput_bps", float64(n)/ce.elapsed.Seconds())
	if IsPrettyMode() {
		ce.add("throughput_h", humanfmt.Throughput(n, ce.elapsed))
	}
	return ce
}

// Log emits the event at info level.
func (ce *CompletionEvent) Log(msg string) {
	ce.emit(ce.log.Info(), msg)
}

// LogDebug emits the event at debug level.
func (ce *CompletionEvent) LogDebug(msg string) {
	ce.emit(ce.log.Debug(), msg)
}

func (ce *CompletionEvent) emit(e *zerolog.Event, msg string) {
	if e == nil {
		return
	}
	e = e.Str("event", ce.event).
		Str("phase", ce.phase).
		Int64("duration_ms", ce.elapsed.Milliseconds())
	if IsPrettyMode() {
		e = e.Str("duration_h", humanfmt.Duration(ce.elapsed))
	}
	for _, f := range ce.fields {
		e = e.Interface(f.key, f.val)
	}
	e.Msg(msg)
}
