// Package mcplog writes one JSONL entry per MCP tool call.
package mcplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// LogEntry is the schema for one JSONL line.
type LogEntry struct {
	ID            string         `json:"id"`
	Ts            string         `json:"ts"`
	Tool          string         `json:"tool"`
	Params        map[string]any `json:"params"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	TokensEst     int            `json:"tokens_est"`
	IsError       bool           `json:"is_error"`
	Error         *string        `json:"error"`
}

// Logger appends entries to a writer. It is safe for concurrent use, and a
// nil *Logger discards everything.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	enc    *json.Encoder
}

// NewLogger opens the file at path for appending, creating parent
// directories. An empty path returns nil, nil: logging is disabled.
func NewLogger(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	l := NewWriterLogger(f)
	l.closer = f
	return l, nil
}

// NewWriterLogger logs to w. Close does not close w.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{w: w, enc: json.NewEncoder(w)}
}

// NewEntry starts an entry for a call to tool with a fresh call id.
func NewEntry(tool string, args map[string]any, start time.Time) LogEntry {
	return LogEntry{
		ID:     uuid.NewString(),
		Ts:     start.UTC().Format(time.RFC3339),
		Tool:   tool,
		Params: SanitizeParams(args),
	}
}

// Finish fills in the outcome of the call.
func (e *LogEntry) Finish(result *mcp.CallToolResult, err error, elapsed time.Duration) {
	e.DurationMs = elapsed.Milliseconds()
	e.ResponseBytes = ResponseBytes(result)
	e.TokensEst = e.ResponseBytes / 4
	e.IsError = result != nil && result.IsError
	if err != nil {
		msg := err.Error()
		e.Error = &msg
		e.IsError = true
	}
}

// Write appends one entry. Callers ignore the error so that log failures
// never affect tool results.
func (l *Logger) Write(entry LogEntry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(entry)
}

// Close closes the log file opened by NewLogger.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closer.Close()
}

// ReadEntries decodes a JSONL stream written by Logger. Blank lines are skipped.
func ReadEntries(r io.Reader) ([]LogEntry, error) {
	var entries []LogEntry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return entries, fmt.Errorf("mcplog: line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

// SanitizeParams returns a copy of args safe for logging. Strings longer than
// 64 bytes, such as source code, are replaced by a "{key}_len" entry.
func SanitizeParams(args map[string]any) map[string]any {
	const shortStringMax = 64
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > shortStringMax {
			out[k+"_len"] = len(s)
		} else {
			out[k] = v
		}
	}
	return out
}

// ResponseBytes returns the serialized length of a result's content, or 0
// for a nil result.
func ResponseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// Now is a replaceable clock for testing.
var Now = func() time.Time { return time.Now() }
