package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase TRACE", "TRACE", LevelTrace},
		{"mixed case Debug", "Debug", slog.LevelDebug},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLoggerWithFormat_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		format     string
		logAtDebug bool
	}{
		{"text info filters debug", "info", FormatText, false},
		{"text debug passes debug", "debug", FormatText, true},
		{"tint info filters debug", "info", FormatTint, false},
		{"tint trace passes debug", "trace", FormatTint, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithFormat(tt.level, tt.format, &buf)

			logger.Debug("debug message")
			if got := strings.Contains(buf.String(), "debug message"); got != tt.logAtDebug {
				t.Errorf("debug message visible = %v, want %v (buf: %q)", got, tt.logAtDebug, buf.String())
			}

			buf.Reset()
			logger.Info("phase changed")
			if !strings.Contains(buf.String(), "phase changed") {
				t.Errorf("info message missing (buf: %q)", buf.String())
			}
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(t.Context(), LevelTrace, "tick")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("trace level not labelled: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("Discard logger should not be enabled at error level")
	}
}

func TestNewDecisionLogger_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	dl := NewDecisionLogger(dir, "info")
	if dl != nil {
		t.Error("expected nil DecisionLogger at info level")
	}

	// Nil logger should still be safe to use
	dl.Log(map[string]any{"event": "test"})

	if _, err := os.Stat(filepath.Join(dir, "decisions.jsonl")); err == nil {
		t.Error("decisions.jsonl should not exist at info level")
	}
}

func TestNewDecisionLogger_DebugLevel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	dl := NewDecisionLogger(dir, "debug")
	if dl == nil {
		t.Fatal("expected non-nil DecisionLogger at debug level")
	}
	defer dl.Close()

	dl.Log(map[string]any{"event": "phase_transition", "to": "UNSTABLE"})
	dl.Log(map[string]any{"event": "fire_refused", "reason": "ceiling"})

	path := filepath.Join(dir, "decisions.jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read decisions.jsonl: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), string(data))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if first["to"] != "UNSTABLE" {
		t.Errorf("to = %v, want UNSTABLE", first["to"])
	}
	if _, ok := first["time"]; !ok {
		t.Error("expected time field")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}

func TestDecisionWriter_LogAt(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDecisionWriter(&buf)

	at := time.Date(2026, 3, 1, 12, 0, 7, 0, time.UTC)
	event := map[string]any{"event": "phase_transition"}
	dl.LogAt(at, event)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v (%q)", err, buf.String())
	}
	if got["time"] != "2026-03-01T12:00:07Z" {
		t.Errorf("time = %v, want virtual timestamp", got["time"])
	}
	if _, hasTime := event["time"]; hasTime {
		t.Error("LogAt() should not mutate caller's map")
	}
}

func TestDecisionLogger_NilAndClosed(t *testing.T) {
	var nilLogger *DecisionLogger
	nilLogger.Log(map[string]any{"event": "should_not_panic"})
	nilLogger.Close()

	var buf bytes.Buffer
	dl := NewDecisionWriter(&buf)
	dl.Close()
	dl.Log(map[string]any{"event": "after_close"})
	if buf.Len() != 0 {
		t.Errorf("write after Close: %q", buf.String())
	}
}
