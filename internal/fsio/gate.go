package fsio

import "sync"

// gate is the bounded-slot admission controller. Acquire grants a slot
// immediately when one is free and nobody is queued; otherwise the
// caller parks on a channel at the tail of the wait queue. Release
// hands the freed slot to the longest waiter, so admission among
// queued operations is strictly FIFO — no priority, no starvation.
//
// An explicit waiter queue is used instead of a buffered-channel
// semaphore: channel wakeup order is not specified, and MaxConcurrency
// can change at runtime, which a fixed-capacity channel cannot follow.
type gate struct {
	mu      sync.Mutex
	active  int
	waiters []chan struct{}
}

// sharedGate coordinates every facade instance in the process. The
// descriptor budget is per process, not per sandbox root.
var sharedGate = &gate{}

// acquire blocks until a slot is granted and returns the release
// function for it. The release function is safe to call exactly once;
// calling it again is a no-op.
func (g *gate) acquire() (release func()) {
	g.mu.Lock()
	limit := Throttling().MaxConcurrency
	if g.active < limit && len(g.waiters) == 0 {
		g.active++
		g.mu.Unlock()
		return g.releaseFunc()
	}

	// Queue behind earlier arrivals even if a slot happens to be free:
	// jumping the queue would starve long waiters after a limit change.
	ready := make(chan struct{})
	g.waiters = append(g.waiters, ready)
	g.mu.Unlock()

	<-ready
	return g.releaseFunc()
}

// releaseFunc wraps the slot handback in a sync.Once so a defer plus an
// explicit call cannot double-free a slot.
func (g *gate) releaseFunc() func() {
	var once sync.Once
	return func() {
		once.Do(g.release)
	}
}

// release returns one slot and admits as many queued waiters as the
// current limit allows. Granting in a loop matters when MaxConcurrency
// was raised while operations were queued: a single release can then
// unblock several waiters at once.
func (g *gate) release() {
	g.mu.Lock()
	g.active--
	limit := Throttling().MaxConcurrency
	for len(g.waiters) > 0 && g.active < limit {
		ready := g.waiters[0]
		g.waiters = g.waiters[1:]
		g.active++
		close(ready)
	}
	g.mu.Unlock()
}

func (g *gate) activeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *gate) pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}
