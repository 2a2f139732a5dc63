// Package sysmem reports total physical memory, used to size the default
// in-memory budget for archive builds.
package sysmem

// DefaultMemoryBytes (4 GiB) is assumed when detection is unsupported or fails.
const DefaultMemoryBytes uint64 = 4 << 30

// Result is a memory reading.
type Result struct {
	TotalBytes uint64
	// Reliable is false when TotalBytes is DefaultMemoryBytes.
	Reliable bool
}

// Total returns the machine's physical memory, falling back to
// DefaultMemoryBytes.
func Total() Result {
	if n, ok := totalSystemMemory(); ok && n > 0 {
		return Result{TotalBytes: n, Reliable: true}
	}
	return Result{TotalBytes: DefaultMemoryBytes}
}
