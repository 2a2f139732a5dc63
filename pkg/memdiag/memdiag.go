// Package memdiag logs heap usage against the memory budget at phase
// boundaries.
//
// Enabled by --debug or MICROPAK_MEM_DEBUG=1.
package memdiag

import (
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eunmann/micropak/pkg/humanfmt"
)

// EnvVar enables diagnostics when set to "1".
const EnvVar = "MICROPAK_MEM_DEBUG"

// Stats holds memory statistics from runtime.
type Stats struct {
	HeapAlloc uint64
	HeapSys   uint64
	Sys       uint64
	NumGC     uint32
}

// Read reads current memory statistics.
func Read() Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Stats{
		HeapAlloc: m.HeapAlloc,
		HeapSys:   m.HeapSys,
		Sys:       m.Sys,
		NumGC:     m.NumGC,
	}
}

// EnabledFromEnv reports whether EnvVar requests diagnostics.
func EnabledFromEnv() bool {
	return os.Getenv(EnvVar) == "1"
}

// Tracker records the peak heap seen across phases.
type Tracker struct {
	enabled  bool
	log      zerolog.Logger
	mu       sync.Mutex
	phase    string
	peakHeap uint64
}

// NewTracker creates a tracker. A disabled tracker does nothing.
func NewTracker(log zerolog.Logger, enabled bool) *Tracker {
	return &Tracker{enabled: enabled, log: log, phase: "init"}
}

// SetPhase sets the current phase and logs a snapshot.
func (t *Tracker) SetPhase(phase string) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	t.phase = phase
	t.mu.Unlock()
	t.LogWithBudget("phase_change", 0, 0)
}

// LogWithBudget logs heap stats next to the budget reservation. A heap more
// than twice the reservation suggests the footprint estimate is too low.
func (t *Tracker) LogWithBudget(reason string, budgetInUse, budgetTotal uint64) {
	if !t.enabled {
		return
	}

	stats := Read()

	t.mu.Lock()
	phase := t.phase
	t.peakHeap = max(t.peakHeap, stats.HeapAlloc)
	peak := t.peakHeap
	t.mu.Unlock()

	e := t.log.Debug().
		Str("reason", reason).
		Str("phase", phase).
		Str("heap_alloc", humanfmt.BytesUint64(stats.HeapAlloc)).
		Str("heap_sys", humanfmt.BytesUint64(stats.HeapSys)).
		Str("sys_total", humanfmt.BytesUint64(stats.Sys)).
		Str("peak_heap", humanfmt.BytesUint64(peak)).
		Uint32("num_gc", stats.NumGC)
	if budgetTotal > 0 {
		e = e.Str("budget_inuse", humanfmt.BytesUint64(budgetInUse)).
			Str("budget_total", humanfmt.BytesUint64(budgetTotal))
	}
	e.Msg("memory stats")

	if budgetInUse > 0 && stats.HeapAlloc > 2*budgetInUse {
		t.log.Warn().
			Str("heap_alloc", humanfmt.BytesUint64(stats.HeapAlloc)).
			Str("budget_inuse", humanfmt.BytesUint64(budgetInUse)).
			Msg("heap usage exceeds budget reservation")
	}
}

// PeakHeap returns the peak heap allocation seen.
func (t *Tracker) PeakHeap() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peakHeap
}
