// Package diag keeps a bounded in-memory buffer of operational events,
// rendered by the diagnostics endpoint.
package diag

import (
	"fmt"
	"sync"
)

// DefaultCapacity bounds the buffer when no explicit capacity is given.
const DefaultCapacity = 1000

// Buffer is an append-only ring of event strings. Once full, the oldest
// entries are dropped. Safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	entries []string
	start   int
	full    bool
}

// NewBuffer returns a buffer holding at most capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]string, 0, capacity)}
}

// Append records one event.
func (b *Buffer) Append(entry string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		b.entries[b.start] = entry
		b.start = (b.start + 1) % cap(b.entries)
		return
	}
	b.entries = append(b.entries, entry)
	if len(b.entries) == cap(b.entries) {
		b.full = true
	}
}

// Appendf records one formatted event.
func (b *Buffer) Appendf(format string, args ...any) {
	b.Append(fmt.Sprintf(format, args...))
}

// Error records "<message> : <detail>" and returns message, which is the
// string sent back to the client.
func (b *Buffer) Error(message string, err error) string {
	if err != nil {
		b.Append(message + " : " + err.Error())
	} else {
		b.Append(message)
	}
	return message
}

// Snapshot returns the buffered entries, oldest first.
func (b *Buffer) Snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.entries))
	if b.full {
		out = append(out, b.entries[b.start:]...)
		out = append(out, b.entries[:b.start]...)
		return out
	}
	return append(out, b.entries...)
}

// Len reports how many entries are currently buffered.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
