package main

import "sync"

// DefaultLogQueueCapacity bounds the number of buffered log lines per process.
const DefaultLogQueueCapacity = 1000

// LogQueue is a bounded FIFO of tagged log lines. Writers never block: once
// the queue is full, the oldest line is discarded to admit the new one. Reads
// are destructive, so a line is returned at most once.
type LogQueue struct {
	mu      sync.Mutex
	lines   []string
	cap     int
	dropped int64
}

func NewLogQueue(capacity int) *LogQueue {
	if capacity <= 0 {
		capacity = DefaultLogQueueCapacity
	}
	return &LogQueue{
		lines: make([]string, 0, capacity),
		cap:   capacity,
	}
}

// Push appends a line, discarding the oldest entry on overflow.
func (q *LogQueue) Push(line string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.lines) >= q.cap {
		copy(q.lines, q.lines[1:])
		q.lines = q.lines[:len(q.lines)-1]
		q.dropped++
	}
	q.lines = append(q.lines, line)
}

// Drain removes and returns every buffered line, plus the number of lines
// dropped to overflow since the previous drain.
func (q *LogQueue) Drain() ([]string, int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	lines := q.lines
	dropped := q.dropped
	q.lines = make([]string, 0, q.cap)
	q.dropped = 0
	return lines, dropped
}

func (q *LogQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}
