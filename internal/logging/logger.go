// Package logging writes structured JSON log lines, one object per event.
package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// Logger encodes events as JSON objects with a "ts" timestamp in a fixed location.
// It is safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	enc *json.Encoder
	loc *time.Location
}

// New returns a Logger writing to w. A nil loc means UTC.
func New(w io.Writer, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{enc: json.NewEncoder(w), loc: loc}
}

// Default logs to stdout in the local time zone.
func Default() *Logger {
	return New(os.Stdout, time.Local)
}

// Discard returns a Logger that drops everything; handy in tests.
func Discard() *Logger {
	return New(io.Discard, time.UTC)
}

// Log writes data as-is after stamping "ts" and, when missing, "level".
// The level defaults to "error" when data["status"] is "error".
func (l *Logger) Log(data map[string]any) {
	data["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(data)
}

// Info logs an informational event.
func (l *Logger) Info(event string, fields map[string]any) {
	l.Log(merge(fields, map[string]any{"level": "info", "event": event}))
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(event string, fields map[string]any) {
	l.Log(merge(fields, map[string]any{"level": "warn", "event": event}))
}

// Error logs a failed event with its error message.
func (l *Logger) Error(event string, err error, fields map[string]any) {
	out := merge(fields, map[string]any{"level": "error", "event": event})
	if err != nil {
		out["error_message"] = err.Error()
	}
	l.Log(out)
}

func merge(fields, extra map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+len(extra)+1)
	for k, v := range fields {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
