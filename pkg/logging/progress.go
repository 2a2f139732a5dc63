package logging

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/eunmann/micropak/pkg/humanfmt"
)

// ProgressTracker counts completed items of a fixed-size batch and
// estimates the time remaining. It is safe for concurrent use.
type ProgressTracker struct {
	total     int64
	completed atomic.Int64
	bytes     atomic.Int64
	startTime time.Time
	log       zerolog.Logger
	phase     string

	// Moving average window of item durations.
	mu              sync.Mutex
	recentDurations []time.Duration
	maxRecent       int
}

// NewProgressTracker creates a tracker for total items.
func NewProgressTracker(phase string, total int64, log zerolog.Logger) *ProgressTracker {
	return &ProgressTracker{
		total:           total,
		startTime:       time.Now(),
		log:             log,
		phase:           phase,
		recentDurations: make([]time.Duration, 0, 10),
		maxRecent:       10,
	}
}

// RecordCompletion records that item finished after d with n bytes and
// logs the running progress at debug level.
func (pt *ProgressTracker) RecordCompletion(item string, n int64, d time.Duration) {
	pt.completed.Add(1)
	pt.bytes.Add(n)

	pt.mu.Lock()
	if len(pt.recentDurations) >= pt.maxRecent {
		pt.recentDurations = pt.recentDurations[1:]
	}
	pt.recentDurations = append(pt.recentDurations, d)
	pt.mu.Unlock()

	NewCompletionEvent(pt.log, "item_completed", pt.phase, d).
		Str("item", item).
		Bytes("bytes", n).
		ProgressFromTracker(pt).
		LogDebug("item completed")
}

// Progress returns the completed and total item counts.
func (pt *ProgressTracker) Progress() (completed, total int64) {
	return pt.completed.Load(), pt.total
}

// ProgressPct returns the progress percentage (0-100).
func (pt *ProgressTracker) ProgressPct() float64 {
	if pt.total == 0 {
		return 100.0
	}
	return float64(pt.completed.Load()) * 100.0 / float64(pt.total)
}

// ETA estimates the remaining time from the recent average item duration.
// Items run concurrently, so this is an upper bound.
func (pt *ProgressTracker) ETA() time.Duration {
	completed := pt.completed.Load()
	if completed == 0 {
		return 0
	}
	remaining := pt.total - completed
	if remaining <= 0 {
		return 0
	}

	pt.mu.Lock()
	var avg time.Duration
	if len(pt.recentDurations) > 0 {
		var sum time.Duration
		for _, d := range pt.recentDurations {
			sum += d
		}
		avg = sum / time.Duration(len(pt.recentDurations))
	} else {
		avg = time.Since(pt.startTime) / time.Duration(completed)
	}
	pt.mu.Unlock()

	return avg * time.Duration(remaining)
}

// Elapsed returns time since tracking started.
func (pt *ProgressTracker) Elapsed() time.Duration {
	return time.Since(pt.startTime)
}

// Remaining returns how many items are left.
func (pt *ProgressTracker) Remaining() int64 {
	return pt.total - pt.completed.Load()
}

// BytesDone returns the bytes recorded so far.
func (pt *ProgressTracker) BytesDone() int64 {
	return pt.bytes.Load()
}

// ProgressFromTracker adds done/total, percentage and ETA fields.
func (ce *CompletionEvent) ProgressFromTracker(pt *ProgressTracker) *CompletionEvent {
	completed, total := pt.Progress()
	ce.add("done", completed)
	ce.add("total", total)
	if total > 0 {
		ce.add("progress_pct", float64(completed)*100.0/float64(total))
		if IsPrettyMode() {
			ce.add("progress_h", humanfmt.Count(completed)+"/"+humanfmt.Count(total))
		}
	}
	if eta := pt.ETA(); eta > 0 {
		ce.add("eta_ms", eta.Milliseconds())
		if IsPrettyMode() {
			ce.add("eta_h", humanfmt.Duration(eta))
		}
	}
	return ce
}
