// Package debuglog writes structured JSON-lines debug logs.
package debuglog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DefaultPath is the log file used when --debug is given without a path.
const DefaultPath = "notecal-debug.log"

// Logger writes one JSON object per line with seq, ts and event fields
// followed by the event data. A nil or disabled Logger discards everything.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	seq    int
	now    func() time.Time
}

// Open creates (truncating) the log file at path and logs DEBUG_START.
func Open(path string) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating debug log: %w", err)
	}

	l := New(f)
	l.closer = f
	l.Log("DEBUG_START", map[string]any{
		"log_file": path,
		"time":     time.Now().Format(time.RFC3339),
	})
	return l, nil
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Enabled reports whether entries are written.
func (l *Logger) Enabled() bool {
	return l != nil && l.w != nil
}

// Log writes an entry. Data keys seq, ts and event are reserved.
func (l *Logger) Log(event string, data map[string]any) {
	if !l.Enabled() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	entry := make(map[string]any, len(data)+3)
	for k, v := range data {
		entry[k] = v
	}
	entry["seq"] = l.seq
	entry["ts"] = l.now().Format("15:04:05.000")
	entry["event"] = event

	b, _ := json.Marshal(entry)
	_, _ = fmt.Fprintf(l.w, "%s\n", b)
}

// Error logs err under the ERROR event.
func (l *Logger) Error(context string, err error) {
	if err == nil {
		return
	}
	l.Log("ERROR", map[string]any{
		"context": context,
		"error":   err.Error(),
	})
}

// Close logs DEBUG_END and closes the underlying file, if any.
func (l *Logger) Close() error {
	if !l.Enabled() {
		return nil
	}
	l.Log("DEBUG_END", map[string]any{
		"time": time.Now().Format(time.RFC3339),
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	closer := l.closer
	l.w, l.closer = nil, nil
	if closer == nil {
		return nil
	}
	return closer.Close()
}
