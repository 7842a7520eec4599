// Package logging provides leveled logging and decision tracing for ox500.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A DecisionLogger for structured JSONL traces of phase and scheduling decisions
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// LevelTrace is a custom slog level below Debug. At this level every tick's
// metrics and every refused fire attempt are logged.
const LevelTrace = slog.LevelDebug - 4

// Output formats accepted by NewLogger.
const (
	FormatText = "text"
	FormatTint = "tint"
)

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

func replaceTraceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

// NewLogger creates a leveled slog.Logger writing plain text to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	return NewLoggerWithFormat(level, FormatText, w)
}

// NewLoggerWithFormat creates a leveled slog.Logger. FormatTint renders
// colorized console output; anything else uses slog's text handler.
func NewLoggerWithFormat(level, format string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	if strings.EqualFold(format, FormatTint) {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:       lvl,
			TimeFormat:  "15:04:05.000",
			ReplaceAttr: replaceTraceLevel,
		}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceTraceLevel,
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// DecisionLogger writes structured decision events as JSONL.
// It is safe for concurrent use. A nil DecisionLogger is safe to use;
// all methods are no-ops on nil receiver.
type DecisionLogger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewDecisionLogger creates a decision logger writing to dir/decisions.jsonl.
// At "info" level (the default), returns nil and no file is created.
// At "debug" or "trace" level, the file is opened for append.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func NewDecisionLogger(dir string, level string) *DecisionLogger {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, "decisions.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &DecisionLogger{w: f, closer: f}
}

// NewDecisionWriter creates a decision logger writing to w. Close does not
// close w.
func NewDecisionWriter(w io.Writer) *DecisionLogger {
	return &DecisionLogger{w: w}
}

// Log writes a decision event as a single JSONL line stamped with the wall
// clock. The caller's map is not mutated. Safe to call on nil receiver.
func (dl *DecisionLogger) Log(event map[string]any) {
	dl.LogAt(time.Now(), event)
}

// LogAt is Log with an explicit timestamp, used when the session runs on a
// virtual clock.
func (dl *DecisionLogger) LogAt(at time.Time, event map[string]any) {
	if dl == nil {
		return
	}

	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = at.UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.w == nil {
		return
	}
	_, _ = dl.w.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (dl *DecisionLogger) Close() {
	if dl == nil {
		return
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.closer != nil {
		dl.closer.Close()
		dl.closer = nil
	}
	dl.w = nil
}
