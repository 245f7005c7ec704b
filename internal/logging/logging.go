// Package logging writes one JSON object per line, the log shape shared by
// every component of the analyzer.
package logging

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Logger emits structured JSON log lines. Safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{enc: json.NewEncoder(w)}
}

// Info logs an informational event with optional fields.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.log("info", msg, fields)
}

// Error logs an error event. err may be nil.
func (l *Logger) Error(msg string, err error, fields map[string]any) {
	if err != nil {
		if fields == nil {
			fields = map[string]any{}
		}
		fields["error"] = err.Error()
	}
	l.log("error", msg, fields)
}

func (l *Logger) log(level, msg string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	for k, v := range fields {
		entry[k] = v
	}

	l.mu.Lock()
	_ = l.enc.Encode(entry)
	l.mu.Unlock()
}
