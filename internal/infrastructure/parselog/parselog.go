// Package parselog keeps a bounded in-memory trail of parse pipeline events
// so recent scraping activity can be inspected over the debug endpoint
// without grepping server logs.
package parselog

import (
	"log"
	"sync"
	"time"
)

// Level classifies a log entry
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Entry is one recorded pipeline event
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Data      string    `json:"data,omitempty"`
}

// Logger is a fixed-capacity ring buffer of entries. When full, the oldest
// entry is evicted first. It is initialized once per process and shared by
// the pipeline components; all methods are safe for concurrent use.
type Logger struct {
	mutex    sync.RWMutex
	entries  []Entry
	start    int
	count    int
	capacity int
}

// DefaultCapacity bounds the buffer when no explicit capacity is given
const DefaultCapacity = 100

// New creates a Logger with the given capacity (DefaultCapacity if <= 0)
func New(capacity int) *Logger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Logger{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

func (l *Logger) record(level Level, message, data string) {
	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		Data:      data,
	}

	l.mutex.Lock()
	idx := (l.start + l.count) % l.capacity
	l.entries[idx] = entry
	if l.count < l.capacity {
		l.count++
	} else {
		l.start = (l.start + 1) % l.capacity
	}
	l.mutex.Unlock()

	// Mirror to the process log so events show up in both places
	log.Printf("[PARSELOG] %s: %s %s", level, message, data)
}

// Info records an informational event
func (l *Logger) Info(message string, data ...string) {
	l.record(LevelInfo, message, first(data))
}

// Success records a completed pipeline step
func (l *Logger) Success(message string, data ...string) {
	l.record(LevelSuccess, message, first(data))
}

// Warning records a recoverable problem
func (l *Logger) Warning(message string, data ...string) {
	l.record(LevelWarning, message, first(data))
}

// Error records a failure
func (l *Logger) Error(message string, data ...string) {
	l.record(LevelError, message, first(data))
}

// Entries returns all buffered entries, oldest first
func (l *Logger) Entries() []Entry {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	out := make([]Entry, 0, l.count)
	for i := 0; i < l.count; i++ {
		out = append(out, l.entries[(l.start+i)%l.capacity])
	}
	return out
}

// LastN returns the most recent n entries, oldest first
func (l *Logger) LastN(n int) []Entry {
	all := l.Entries()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Clear drops all buffered entries
func (l *Logger) Clear() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.start = 0
	l.count = 0
}

// Len returns the number of buffered entries
func (l *Logger) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.count
}

func first(data []string) string {
	if len(data) == 0 {
		return ""
	}
	return data[0]
}
