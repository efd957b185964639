package prefetch

import "github.com/sarchlab/akita/v4/sim"

// delayQueueEntry holds an address waiting to enter the left recent-request
// table once its due time elapses.
type delayQueueEntry struct {
	addr uint64
	due  sim.VTimeInSec
}

// delayQueue is a bounded FIFO of pending left-table insertions. Due times
// are monotonically non-decreasing because entries are enqueued with
// now + fixed delay.
type delayQueue struct {
	entries  []delayQueueEntry
	capacity int
}

func newDelayQueue(capacity uint) *delayQueue {
	return &delayQueue{
		entries:  make([]delayQueueEntry, 0, capacity),
		capacity: int(capacity),
	}
}

// push appends an entry. It returns false when the queue is at capacity and
// the entry was dropped; dropping is a loss-tolerant policy, not an error.
func (q *delayQueue) push(addr uint64, due sim.VTimeInSec) bool {
	if len(q.entries) == q.capacity {
		return false
	}
	q.entries = append(q.entries, delayQueueEntry{addr: addr, due: due})
	return true
}

func (q *delayQueue) empty() bool {
	return len(q.entries) == 0
}

// front returns the oldest entry. The queue must not be empty.
func (q *delayQueue) front() delayQueueEntry {
	return q.entries[0]
}

// pop removes and returns the oldest entry. The queue must not be empty.
func (q *delayQueue) pop() delayQueueEntry {
	entry := q.entries[0]
	q.entries = q.entries[1:]
	return entry
}

// reset discards all pending entries.
func (q *delayQueue) reset() {
	q.entries = q.entries[:0]
}
