// Package linebuf provides an unbounded queue for received log lines.
//
// The stream client delivers lines synchronously from its event loop,
// so the consumer callback must never block. A Buffer sits between the
// callback and a slower writer (a terminal, a pipe): appends always
// succeed and grow the ring when it fills, while a single reader
// drains lines in arrival order.
package linebuf

import (
	"sync"
	"time"
)

// Line is one raw log payload with its local receive timestamp.
type Line struct {
	Data       []byte
	ReceivedAt time.Time
}

// Buffer is a thread-safe ring of log lines that doubles its capacity
// when it reaches 70% full.
type Buffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []Line
	head   int // read position
	tail   int // write position
	count  int
	cap    int
	closed bool

	totalAppended int64
	totalDrained  int64
	resizeCount   int
}

// New creates a Buffer with the given initial capacity.
func New(initialCapacity int) *Buffer {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	b := &Buffer{
		buf: make([]Line, initialCapacity),
		cap: initialCapacity,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Append adds a line. Grows the ring if at 70% capacity. Returns false
// if the buffer is closed.
func (b *Buffer) Append(l Line) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	threshold := (b.cap * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if b.count+1 >= threshold {
		b.grow()
	}

	b.buf[b.tail] = l
	b.tail = (b.tail + 1) % b.cap
	b.count++
	b.totalAppended++

	b.cond.Signal()
	return true
}

// Next removes and returns the oldest line, blocking until one is
// available or the buffer is closed. After close, remaining lines are
// still drained; then ok is false.
func (b *Buffer) Next() (Line, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.count == 0 && !b.closed {
		b.cond.Wait()
	}

	if b.count == 0 && b.closed {
		return Line{}, false
	}

	return b.take(), true
}

// TryNext removes the oldest line without blocking.
func (b *Buffer) TryNext() (Line, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return Line{}, false
	}
	return b.take(), true
}

// take removes the head line. Must be called with the lock held.
func (b *Buffer) take() Line {
	l := b.buf[b.head]
	b.buf[b.head] = Line{} // release the payload for GC
	b.head = (b.head + 1) % b.cap
	b.count--
	b.totalDrained++
	return l
}

// Close closes the buffer. After closing, Append returns false and
// readers drain the remaining lines before seeing the closed signal.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

// Len returns the number of buffered lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Stats returns buffer statistics.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Count:         b.count,
		Capacity:      b.cap,
		TotalAppended: b.totalAppended,
		TotalDrained:  b.totalDrained,
		ResizeCount:   b.resizeCount,
	}
}

// Stats describes a Buffer's occupancy and lifetime counters.
type Stats struct {
	Count         int
	Capacity      int
	TotalAppended int64
	TotalDrained  int64
	ResizeCount   int
}

// grow doubles the ring capacity. Must be called with the lock held.
func (b *Buffer) grow() {
	newCap := b.cap * 2
	newBuf := make([]Line, newCap)

	if b.count > 0 {
		if b.head < b.tail {
			copy(newBuf, b.buf[b.head:b.tail])
		} else {
			n := copy(newBuf, b.buf[b.head:])
			copy(newBuf[n:], b.buf[:b.tail])
		}
	}

	b.buf = newBuf
	b.head = 0
	b.tail = b.count
	b.cap = newCap
	b.resizeCount++
}
