package humanfmt

import (
	"testing"
	"time"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{KiB, "1.00 KiB"},
		{3 * KiB / 2, "1.50 KiB"},
		{MiB - 1, "1024.00 KiB"},
		{MiB, "1.00 MiB"},
		{5 * GiB / 4, "1.25 GiB"},
		{3 * TiB, "3.00 TiB"},
		{-2048, "-2048 B"},
	}

	for _, tt := range tests {
		if got := Bytes(tt.input); got != tt.want {
			t.Errorf("Bytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBytesUint64(t *testing.T) {
	if got := BytesUint64(5 * TiB); got != "5.00 TiB" {
		t.Errorf("BytesUint64(5 TiB) = %q, want %q", got, "5.00 TiB")
	}
	if got := BytesUint64(53); got != "53 B" {
		t.Errorf("BytesUint64(53) = %q, want %q", got, "53 B")
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.00K"},
		{999_994, "999.99K"},
		{1_000_000, "1.00M"},
		{2_500_000, "2.50M"},
		{999_999_999, "1000.00M"},
		{1_000_000_000, "1.00B"},
		{2_500_000_000, "2.50B"},
		{-5000, "-5000"},
	}

	for _, tt := range tests {
		if got := Count(tt.input); got != tt.want {
			t.Errorf("Count(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestThroughput(t *testing.T) {
	tests := []struct {
		bytes    int64
		duration time.Duration
		want     string
	}{
		{100, 0, "∞"},
		{0, 0, "∞"},
		{100, -time.Second, "∞"},
		{0, time.Second, "0 B/s"},
		{512, 2 * time.Second, "256 B/s"},
		{KiB, time.Second, "1.00 KiB/s"},
		{3 * MiB, 1500 * time.Millisecond, "2.00 MiB/s"},
		{GiB, 4 * time.Second, "256.00 MiB/s"},
		{2 * TiB, time.Second, "2.00 TiB/s"},
	}

	for _, tt := range tests {
		if got := Throughput(tt.bytes, tt.duration); got != tt.want {
			t.Errorf("Throughput(%d, %v) = %q, want %q", tt.bytes, tt.duration, got, tt.want)
		}
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{-time.Second, "-1s"},
		{0, "0ns"},
		{999 * time.Nanosecond, "999ns"},
		{789 * time.Microsecond, "789.0µs"},
		{45600 * time.Microsecond, "45.6ms"},
		{1230 * time.Millisecond, "1.23s"},
		{2 * time.Minute, "2m"},
		{90 * time.Second, "1m30s"},
		{3 * time.Hour, "3h"},
		{2*time.Hour + 15*time.Minute + 30*time.Second, "2h15m"},
	}

	for _, tt := range tests {
		if got := Duration(tt.input); got != tt.want {
			t.Errorf("Duration(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
