package syncutil

import "sync"

// Barrier is a reusable rendezvous point for a fixed number of
// parties. The last party to arrive at CountDownAndWait runs the
// barrier's completion callback (if any) before releasing every
// waiter, then the barrier resets itself for the next round. This
// mirrors the runtime's thread_end_ barrier: once every worker thread
// has finished its last Run/Close pass, one of them marks the whole
// execution done and wakes everyone blocked in Wait.
type Barrier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	parties  int
	waiting  int
	round    int
	onFinish func()
}

// NewBarrier creates a barrier for the given number of parties. A
// nil onFinish is treated as a no-op.
func NewBarrier(parties int, onFinish func()) *Barrier {
	if parties < 1 {
		parties = 1
	}
	if onFinish == nil {
		onFinish = func() {}
	}
	b := &Barrier{parties: parties, onFinish: onFinish}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// CountDownAndWait blocks the calling goroutine until all parties
// have called CountDownAndWait for the current round, running the
// barrier's completion callback exactly once per round on the last
// arrival before releasing the others.
func (b *Barrier) CountDownAndWait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	round := b.round
	b.waiting++
	if b.waiting == b.parties {
		b.onFinish()
		b.waiting = 0
		b.round++
		b.cond.Broadcast()
		return
	}
	for round == b.round {
		b.cond.Wait()
	}
}

// Parties returns the number of parties the barrier was constructed
// with.
func (b *Barrier) Parties() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parties
}
