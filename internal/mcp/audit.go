package mcp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEntry represents a single audit log entry for an MCP tool invocation.
type AuditEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Session    string            `json:"session"`
	Tool       string            `json:"tool"`
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"` // "success" or "error"
	Error      string            `json:"error,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// AuditLogger writes audit entries as JSONL. It is safe for concurrent use. A
// nil AuditLogger is safe to use; all methods are no-ops on nil receiver.
type AuditLogger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewAuditLogger returns a logger writing to w.
func NewAuditLogger(w io.Writer) *AuditLogger {
	return &AuditLogger{w: w}
}

// OpenAuditLog appends to <dir>/audit.jsonl, creating it with restricted
// permissions.
func OpenAuditLog(dir string) (*AuditLogger, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cannot create audit log directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, "audit.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("cannot open audit log %s: %w", path, err)
	}
	return &AuditLogger{w: f, closer: f}, nil
}

// Log appends one entry. Encoding failures are dropped.
func (a *AuditLogger) Log(entry AuditEntry) {
	if a == nil || a.w == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = a.w.Write(data)
}

// Close closes the underlying file if the logger opened one.
func (a *AuditLogger) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closer.Close()
}

// maxParamLen bounds audited parameter values.
const maxParamLen = 64

// safeParams lists the parameter names recorded verbatim. Anything else is
// recorded as its length only.
var safeParams = map[string]bool{
	"kind":   true,
	"set":    true,
	"render": true,
	"width":  true,
}

// sanitizeToolParams flattens tool parameters for the audit log.
func sanitizeToolParams(params map[string]interface{}) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		s := fmt.Sprint(v)
		if !safeParams[k] {
			out[k] = fmt.Sprintf("<%d chars>", len(s))
			continue
		}
		if len(s) > maxParamLen {
			s = s[:maxParamLen] + "..."
		}
		out[k] = s
	}
	return out
}

// auditTool logs a tool invocation.
func (s *Server) auditTool(tool string, start time.Time, err error, params map[string]string) {
	status := "success"
	errMsg := ""
	if err != nil {
		status = "error"
		errMsg = err.Error()
	}
	s.audit.Log(AuditEntry{
		Timestamp:  start,
		Session:    s.st.ID(),
		Tool:       tool,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     status,
		Error:      errMsg,
		Params:     params,
	})
}
