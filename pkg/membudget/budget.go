// Package membudget bounds how many bytes an archive build may hold in
// memory. Builds are fully in-memory: the loaded inputs and the finished
// archive coexist, so the budget is checked before any file is read.
package membudget

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/eunmann/micropak/pkg/humanfmt"
	"github.com/eunmann/micropak/pkg/sysmem"
)

// EnvVar overrides the automatic budget when no flag is given.
const EnvVar = "MICROPAK_MEM_BUDGET"

// DefaultBudgetBytes is used when system memory cannot be detected.
const DefaultBudgetBytes uint64 = 2 << 30

// ErrOverBudget indicates a build would not fit the memory budget.
var ErrOverBudget = errors.New("exceeds memory budget")

// BudgetSource records where the budget came from.
type BudgetSource string

const (
	BudgetSourceCLI       BudgetSource = "cli"
	BudgetSourceEnv       BudgetSource = "env"
	BudgetSourceAuto50Pct BudgetSource = "auto-50pct"
	BudgetSourceDefault   BudgetSource = "default"
)

// Budget is a soft memory limit. Callers reserve before allocating and
// release when done. It is safe for concurrent use.
type Budget struct {
	total  uint64
	inUse  atomic.Uint64
	source BudgetSource
}

// New creates a budget of total bytes.
func New(total uint64, source BudgetSource) *Budget {
	return &Budget{total: total, source: source}
}

// NewFromSystemRAM creates a budget of half the detected memory, or
// DefaultBudgetBytes when detection is unreliable.
func NewFromSystemRAM() *Budget {
	mem := sysmem.Total()
	if !mem.Reliable {
		return New(DefaultBudgetBytes, BudgetSourceDefault)
	}
	return New(mem.TotalBytes/2, BudgetSourceAuto50Pct)
}

// Resolve picks the budget from the flag value, then EnvVar, then system
// memory.
func Resolve(flagValue string) (*Budget, error) {
	if flagValue != "" {
		n, err := ParseHumanSize(flagValue)
		if err != nil {
			return nil, fmt.Errorf("invalid --mem-budget: %w", err)
		}
		return New(n, BudgetSourceCLI), nil
	}
	if env := os.Getenv(EnvVar); env != "" {
		n, err := ParseHumanSize(env)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvVar, err)
		}
		return New(n, BudgetSourceEnv), nil
	}
	return NewFromSystemRAM(), nil
}

// Total returns the budget size in bytes.
func (b *Budget) Total() uint64 {
	return b.total
}

// InUse returns the reserved bytes.
func (b *Budget) InUse() uint64 {
	return b.inUse.Load()
}

// Source returns how the budget was determined.
func (b *Budget) Source() BudgetSource {
	return b.source
}

// TryReserve reserves n bytes if they fit.
func (b *Budget) TryReserve(n uint64) bool {
	for {
		cur := b.inUse.Load()
		if n > b.total || cur > b.total-n {
			return false
		}
		if b.inUse.CompareAndSwap(cur, cur+n) {
			return true
		}
	}
}

// Release returns n reserved bytes, never dropping below zero.
func (b *Budget) Release(n uint64) {
	for {
		cur := b.inUse.Load()
		next := uint64(0)
		if n < cur {
			next = cur - n
		}
		if b.inUse.CompareAndSwap(cur, next) {
			return
		}
	}
}

// BuildFootprint estimates the peak memory of building an archive from
// files totalling inputBytes: the inputs plus an archive of about the same
// size plus per-file record and index overhead.
func BuildFootprint(inputBytes uint64, files int) uint64 {
	const perFile = 2*53 + 256 // two records plus a generous path
	return 2*inputBytes + uint64(files)*perFile
}

// ReserveBuild reserves the footprint of a build or returns ErrOverBudget.
// The returned release function must be called when the build's buffers
// are no longer needed.
func (b *Budget) ReserveBuild(inputBytes uint64, files int) (release func(), err error) {
	need := BuildFootprint(inputBytes, files)
	if !b.TryReserve(need) {
		return nil, fmt.Errorf("build needs about %s, budget %s (%s): %w",
			humanfmt.BytesUint64(need), humanfmt.BytesUint64(b.total), b.source, ErrOverBudget)
	}
	return func() { b.Release(need) }, nil
}

var sizeMultipliers = map[string]float64{
	"":    1,
	"B":   1,
	"KB":  1e3,
	"K":   1 << 10,
	"KiB": 1 << 10,
	"MB":  1e6,
	"M":   1 << 20,
	"MiB": 1 << 20,
	"GB":  1e9,
	"G":   1 << 30,
	"GiB": 1 << 30,
	"TB":  1e12,
	"T":   1 << 40,
	"TiB": 1 << 40,
}

// ParseHumanSize parses sizes such as "512MB", "4GiB" or "0.5G".
func ParseHumanSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty size string")
	}

	end := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if end < 0 {
		end = len(s)
	}

	num, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || num < 0 {
		return 0, fmt.Errorf("invalid number: %q", s[:end])
	}
	mult, ok := sizeMultipliers[s[end:]]
	if !ok {
		return 0, fmt.Errorf("unknown size suffix: %q", s[end:])
	}

	return uint64(num * mult), nil
}
