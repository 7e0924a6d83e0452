// Package logging wires a file-backed structured logger to a bounded
// in-memory ring buffer the TUI's log pane reads from.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const bufferCapacity = 1000

// Record is one captured log line.
type Record struct {
	Level     log.Level
	Message   string
	Timestamp time.Time
}

// Buffer is a fixed-capacity ring buffer of the most recent log Records,
// safe for concurrent use by the engine goroutine (writer) and the UI
// goroutine (reader).
type Buffer struct {
	mu      sync.Mutex
	records []Record
}

func newBuffer() *Buffer {
	return &Buffer{records: make([]Record, 0, bufferCapacity)}
}

func (b *Buffer) push(r Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.records) >= bufferCapacity {
		b.records = append(b.records[:0], b.records[1:]...)
	}
	b.records = append(b.records, r)
}

// Snapshot returns a copy of the currently buffered records, oldest first.
func (b *Buffer) Snapshot() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// Logger pairs a file-backed charmbracelet/log.Logger with a Buffer the UI
// can poll.
type Logger struct {
	*log.Logger
	buf *Buffer
	f   *os.File
}

// New truncates any previous run's log at path and returns a Logger that
// writes structured lines to it while also retaining the last 1000
// records in an in-memory Buffer.
func New(path string) (*Logger, error) {
	_ = os.Remove(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           log.DebugLevel,
	})

	return &Logger{Logger: l, buf: newBuffer(), f: f}, nil
}

// Buffer returns the ring buffer backing the UI's log pane. Callers must
// use Logger's Info/Warn/Error (not the embedded *log.Logger directly) for
// a call to be mirrored into the buffer.
func (l *Logger) Buffer() *Buffer { return l.buf }

// Close flushes and closes the underlying log file.
func (l *Logger) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}

// Info logs at info level and mirrors the message into the ring buffer.
func (l *Logger) Info(msg string, kv ...interface{}) {
	l.Logger.Info(msg, kv...)
	l.buf.push(Record{Level: log.InfoLevel, Message: formatMessage(msg, kv), Timestamp: time.Now()})
}

// Warn logs at warn level and mirrors the message into the ring buffer.
func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.Logger.Warn(msg, kv...)
	l.buf.push(Record{Level: log.WarnLevel, Message: formatMessage(msg, kv), Timestamp: time.Now()})
}

// Error logs at error level and mirrors the message into the ring buffer.
func (l *Logger) Error(msg string, kv ...interface{}) {
	l.Logger.Error(msg, kv...)
	l.buf.push(Record{Level: log.ErrorLevel, Message: formatMessage(msg, kv), Timestamp: time.Now()})
}

func formatMessage(msg string, kv []interface{}) string {
	if len(kv) == 0 {
		return msg
	}
	s := msg
	for i := 0; i+1 < len(kv); i += 2 {
		s += fmt.Sprintf(" %v=%v", kv[i], kv[i+1])
	}
	return s
}
