// Package syncutil provides the small set of coordination primitives
// the runtime uses to start and tear down a pipeline's worker threads
// in lockstep: a count-down Latch and a reusable Barrier.
package syncutil

import (
	"sync"
)

// Latch is a one-shot countdown gate: CountDown decrements the count,
// and Wait blocks until the count reaches zero. Once at zero it stays
// at zero; further CountDown calls are no-ops.
type Latch struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

// NewLatch creates a latch initialized to count. A non-positive count
// starts the latch already open.
func NewLatch(count int) *Latch {
	if count < 0 {
		count = 0
	}
	l := &Latch{count: count}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// CountDown decrements the count by one, waking any waiters once it
// reaches zero. Calling CountDown on an already-zero latch is a no-op.
func (l *Latch) CountDown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return
	}
	l.count--
	if l.count == 0 {
		l.cond.Broadcast()
	}
}

// Wait blocks until the count reaches zero. If it is already zero,
// Wait returns immediately.
func (l *Latch) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.count > 0 {
		l.cond.Wait()
	}
}

// GetCount returns the current count.
func (l *Latch) GetCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
