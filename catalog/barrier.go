package catalog

import "sync"

// publishBarrier is the condition-variable-equivalent H waiters block on
// (spec.md §4.4 step 9 "broadcast-notify H waiters"). It is adapted from
// the teacher's notification-hub pattern: waiters register a channel,
// the Delta Builder closes every registered channel on each publish.
type publishBarrier struct {
	mu      sync.Mutex
	waiters []chan struct{}
}

func newPublishBarrier() *publishBarrier {
	return &publishBarrier{}
}

// subscribe returns a channel that is closed on the next publish.
func (b *publishBarrier) subscribe() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.waiters = append(b.waiters, ch)
	return ch
}

// notify wakes every current waiter. Called once per completed topic
// publish, after last_published_topic has already been advanced.
func (b *publishBarrier) notify() {
	b.mu.Lock()
	waiters := b.waiters
	b.waiters = nil
	b.mu.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
}
