package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// captureJSON reinitializes the logger to write JSON into a buffer, runs f and
// restores the default configuration.
func captureJSON(t *testing.T, level Level, f func()) []map[string]any {
	t.Helper()

	var buf bytes.Buffer
	InitLoggerTo(&buf, level, FormatJSON)
	defer InitLogger(LevelInfo, FormatText)

	f()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("ParseFormat(JSON) should be FormatJSON")
	}
	if ParseFormat("text") != FormatText || ParseFormat("") != FormatText {
		t.Error("ParseFormat should default to FormatText")
	}
}

func TestInitLoggerLevelFiltering(t *testing.T) {
	records := captureJSON(t, LevelWarn, func() {
		Debug("hidden")
		Info("hidden too")
		Warn("shown", "k", 1)
		Error("shown too")
	})
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %v", len(records), records)
	}
	if records[0]["msg"] != "shown" || records[0]["k"] != float64(1) {
		t.Errorf("unexpected first record %v", records[0])
	}
}

func TestTimestampFormat(t *testing.T) {
	records := captureJSON(t, LevelInfo, func() {
		Info("tick")
	})
	ts, _ := records[0]["time"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	if GetRunID(ctx) != "" {
		t.Error("empty context should have no run id")
	}
	ctx = WithRunID(ctx, "run-42")
	if got := GetRunID(ctx); got != "run-42" {
		t.Errorf("GetRunID() = %q, want run-42", got)
	}

	records := captureJSON(t, LevelDebug, func() {
		InfoContext(ctx, "with run")
		StageProgress(ctx, "dump", 1000, "pages", 10)
		StageDone(ctx, "dump", 2000, 1500*time.Millisecond)
		BatchAnnotated(ctx, 64, 2048, 20*time.Millisecond)
		WarnContext(context.Background(), "no run")
	})
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	for _, rec := range records[:4] {
		if rec["run_id"] != "run-42" {
			t.Errorf("record %v missing run_id", rec)
		}
	}
	if _, ok := records[4]["run_id"]; ok {
		t.Errorf("record without run context has run_id: %v", records[4])
	}
	if records[1]["stage"] != "dump" || records[1]["pages"] != float64(10) {
		t.Errorf("unexpected stage_progress record %v", records[1])
	}
	if records[2]["duration_ms"] != float64(1500) {
		t.Errorf("unexpected stage_done record %v", records[2])
	}
	if records[3]["msg"] != "batch_annotated" || records[3]["tokens"] != float64(2048) {
		t.Errorf("unexpected batch_annotated record %v", records[3])
	}
}

func TestGetLogger(t *testing.T) {
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}
}
