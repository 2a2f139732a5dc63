package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWithPhase(t *testing.T) {
	var buf bytes.Buffer
	log := WithPhase(zerolog.New(&buf), "pack")
	log.Info().Msg("test message")

	if !strings.Contains(buf.String(), `"phase":"pack"`) {
		t.Errorf("expected phase field in output, got: %s", buf.String())
	}
}

func TestCompletionEventBasicFields(t *testing.T) {
	var buf bytes.Buffer
	SetPrettyMode(false)

	PhaseComplete(zerolog.New(&buf), "pack", 500*time.Millisecond).
		Str("archive", "Game.pak").
		Int("files", 42).
		Uint64("index_offset", 1234).
		Log("archive built")

	output := buf.String()
	for _, want := range []string{
		`"event":"phase_completed"`,
		`"phase":"pack"`,
		`"duration_ms":500`,
		`"archive":"Game.pak"`,
		`"files":42`,
		`"index_offset":1234`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s, got: %s", want, output)
		}
	}
	if strings.Contains(output, "duration_h") {
		t.Errorf("unexpected human field outside pretty mode: %s", output)
	}
}

func TestCompletionEventPrettyMode(t *testing.T) {
	var buf bytes.Buffer
	SetPrettyMode(true)
	defer SetPrettyMode(false)

	FileCreated(zerolog.New(&buf), "write", time.Second).
		Bytes("size", 1073741824).
		Count("entries", 1500000).
		Throughput(1048576).
		Log("file written")

	output := buf.String()
	for _, want := range []string{
		`"event":"file_created"`,
		`"size":1073741824`,
		`"size_h":"1.00 GiB"`,
		`"entries":1500000`,
		`"entries_h":"1.50M"`,
		`"throughput_h":"1.00 MiB/s"`,
		`"duration_h":"1.00s"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s, got: %s", want, output)
		}
	}
}

func TestCompletionEventLogDebugFiltered(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)

	PhaseComplete(log, "pack", time.Millisecond).LogDebug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got: %s", buf.String())
	}
}

func TestThroughputZeroElapsed(t *testing.T) {
	var buf bytes.Buffer
	PhaseComplete(zerolog.New(&buf), "pack", 0).Throughput(100).Log("done")

	if strings.Contains(buf.String(), "throughput") {
		t.Errorf("expected no throughput with zero elapsed, got: %s", buf.String())
	}
}
