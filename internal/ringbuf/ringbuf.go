// Package ringbuf implements a bounded, append-only byte store with FIFO
// eviction: once it is full, the oldest bytes are discarded to make room for
// new ones, so the tail of the stream is always preserved.
package ringbuf

import "unicode/utf8"

// DefaultCapacity is used when a caller does not specify one.
const DefaultCapacity = 100 * 1024 * 1024 // 100 MiB, matches config.rs's DEFAULT_BUFFER_SIZE

// Buffer is a bounded byte sequence of capacity C. It tracks a monotonic
// write count and a virtual base offset rather than physical head/tail
// indices: a plain growable slice plus an offset is simpler to reason about
// than a literal circular buffer and is explicitly acceptable (spec.md §9).
type Buffer struct {
	data []byte
	cap  int
	base int // absolute offset of data[0]
}

// New creates a Buffer with the given capacity. A capacity of 0 means
// unbounded (no eviction ever happens).
func New(capacity int) *Buffer {
	return &Buffer{cap: capacity}
}

// Append adds bytes to the buffer, evicting the oldest bytes first if the
// result would exceed capacity. If len(b) itself exceeds capacity, only the
// trailing C bytes of b are retained.
func (b *Buffer) Append(p []byte) {
	if b.cap > 0 && len(p) >= b.cap {
		// The new data alone fills (or overflows) capacity: everything
		// previously retained is evicted along with the discarded prefix
		// of p, so base advances by the total discarded.
		discarded := len(b.data) + (len(p) - b.cap)
		b.base += discarded
		b.data = append(b.data[:0], p[len(p)-b.cap:]...)
		return
	}
	b.data = append(b.data, p...)
	if b.cap > 0 && len(b.data) > b.cap {
		overflow := len(b.data) - b.cap
		b.data = b.data[overflow:]
		b.base += overflow
	}
}

// Len returns the number of bytes currently retained.
func (b *Buffer) Len() int { return len(b.data) }

func (b *Buffer) len() int { return len(b.data) }

// Cap returns the configured capacity (0 means unbounded).
func (b *Buffer) Cap() int { return b.cap }

// Base returns the absolute offset of the first retained byte. All
// position arguments to ConsumeBefore/Consume are absolute offsets using
// this same coordinate space.
func (b *Buffer) Base() int { return b.base }

// End returns the absolute offset one past the last retained byte.
func (b *Buffer) End() int { return b.base + len(b.data) }

// ConsumeBefore returns the bytes in [Base, pos) and advances Base to pos.
// pos must be within [Base, End]; callers computing offsets from Matcher
// never violate this.
func (b *Buffer) ConsumeBefore(pos int) []byte {
	rel := pos - b.base
	if rel < 0 {
		rel = 0
	}
	if rel > len(b.data) {
		rel = len(b.data)
	}
	out := make([]byte, rel)
	copy(out, b.data[:rel])
	b.data = b.data[rel:]
	b.base += rel
	return out
}

// Consume returns the next n bytes and advances Base by n (clamped to Len).
func (b *Buffer) Consume(n int) []byte {
	if n < 0 {
		n = 0
	}
	if n > len(b.data) {
		n = len(b.data)
	}
	out := make([]byte, n)
	copy(out, b.data[:n])
	b.data = b.data[n:]
	b.base += n
	return out
}

// Tail returns the most recent min(n, Len) bytes without mutating state.
func (b *Buffer) Tail(n int) []byte {
	if n < 0 {
		n = 0
	}
	if n > len(b.data) {
		n = len(b.data)
	}
	out := make([]byte, n)
	copy(out, b.data[len(b.data)-n:])
	return out
}

// Bytes returns the full retained content without mutating state. The
// returned slice must be treated as read-only by callers.
func (b *Buffer) Bytes() []byte { return b.data }

// AsStrLossy returns the retained content as a string, replacing invalid
// UTF-8 byte sequences with U+FFFD.
func (b *Buffer) AsStrLossy() string {
	if utf8.Valid(b.data) {
		return string(b.data)
	}
	return strings_ToValidUTF8(b.data)
}

// strings_ToValidUTF8 replaces each invalid byte of b with its own U+FFFD;
// unlike strings.ToValidUTF8, a run of invalid bytes is not collapsed into
// a single replacement.
func strings_ToValidUTF8(b []byte) string {
	var out []rune
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			out = append(out, utf8.RuneError)
			i++
			continue
		}
		out = append(out, r)
		i += size
	}
	return string(out)
}

// Clear empties the buffer without resetting Base (Base keeps advancing so
// offsets already handed out to callers remain globally monotonic).
func (b *Buffer) Clear() {
	b.base += len(b.data)
	b.data = b.data[:0]
}
