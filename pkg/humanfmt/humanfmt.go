// Package humanfmt renders byte counts, item counts, durations and rates
// for log output.
package humanfmt

import (
	"fmt"
	"strconv"
	"time"
)

// Binary (IEC) units for bytes.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
	TiB = 1024 * GiB
)

type unit struct {
	size   float64
	suffix string
}

// Largest first.
var byteUnits = []unit{
	{TiB, "TiB"},
	{GiB, "GiB"},
	{MiB, "MiB"},
	{KiB, "KiB"},
}

var countUnits = []unit{
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Bytes formats b with IEC units, e.g. "1.23 GiB". Values below 1 KiB and
// negative values are printed as plain bytes.
func Bytes(b int64) string {
	for _, u := range byteUnits {
		if float64(b) >= u.size {
			return fmt.Sprintf("%.2f %s", float64(b)/u.size, u.suffix)
		}
	}
	return fmt.Sprintf("%d B", b)
}

// BytesUint64 is like Bytes but for uint64.
func BytesUint64(b uint64) string {
	return Bytes(int64(b))
}

// Count formats n with decimal suffixes, e.g. "1.50M".
func Count(n int64) string {
	for _, u := range countUnits {
		if float64(n) >= u.size {
			return fmt.Sprintf("%.2f%s", float64(n)/u.size, u.suffix)
		}
	}
	return strconv.FormatInt(n, 10)
}

// Throughput formats bytes over d as a rate, e.g. "123.40 MiB/s".
func Throughput(bytes int64, d time.Duration) string {
	if d <= 0 {
		return "∞"
	}
	rate := float64(bytes) / d.Seconds()
	for _, u := range byteUnits {
		if rate >= u.size {
			return fmt.Sprintf("%.2f %s/s", rate/u.size, u.suffix)
		}
	}
	return fmt.Sprintf("%.0f B/s", rate)
}

// Duration formats d compactly: "2h15m", "1m30s", "1.23s", "45.6ms",
// "789.0µs" or "500ns".
func Duration(d time.Duration) string {
	switch {
	case d < 0:
		return d.String()
	case d >= time.Hour:
		return wholeUnits(d/time.Hour, "h", (d%time.Hour)/time.Minute, "m")
	case d >= time.Minute:
		return wholeUnits(d/time.Minute, "m", (d%time.Minute)/time.Second, "s")
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fµs", float64(d)/float64(time.Microsecond))
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}

func wholeUnits(major time.Duration, majorSuffix string, minor time.Duration, minorSuffix string) string {
	if minor == 0 {
		return fmt.Sprintf("%d%s", major, majorSuffix)
	}
	return fmt.Sprintf("%d%s%d%s", major, majorSuffix, minor, minorSuffix)
}
