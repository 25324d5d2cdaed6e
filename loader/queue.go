package loader

import (
	"container/heap"
	"sync"
	"time"

	"github.com/catalogd/catalogd/catalog"
)

// loadRequest is one entry in the priority queue (spec.md §4.6).
type loadRequest struct {
	key             catalog.Key
	expectedVersion catalog.Version
	priority        int
	enqueuedAt      time.Time
	index           int // heap bookkeeping
}

// requestHeap orders by priority descending, then FIFO by enqueue time.
type requestHeap []*loadRequest

func (h requestHeap) Len() int { return len(h) }
func (h requestHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].enqueuedAt.Before(h[j].enqueuedAt)
}
func (h requestHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *requestHeap) Push(x any) {
	req := x.(*loadRequest)
	req.index = len(*h)
	*h = append(*h, req)
}
func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// priorityQueue is the dedup-aware priority queue of load requests
// (spec.md §4.6 "a priority queue of load requests deduplicated by table
// key"); dedup itself lives one layer up in Loader.inflight, this type
// only orders what's pending.
type priorityQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	heap   requestHeap
	byKey  map[catalog.Key]*loadRequest
	closed bool
}

func newPriorityQueue() *priorityQueue {
	q := &priorityQueue{byKey: make(map[catalog.Key]*loadRequest)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *priorityQueue) push(req *loadRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	heap.Push(&q.heap, req)
	q.byKey[req.key] = req
	q.cond.Signal()
}

// prioritize raises an already-queued request's priority and re-heapifies
// (spec.md §4.6 "prioritize(K) raises K to the front of the queue"). It is
// a no-op if the key isn't currently queued (already popped by a worker).
func (q *priorityQueue) prioritize(key catalog.Key) {
	q.mu.Lock()
	defer q.mu.Unlock()
	req, ok := q.byKey[key]
	if !ok {
		return
	}
	req.priority = 1
	heap.Fix(&q.heap, req.index)
}

// pop blocks until a request is available or the queue is closed.
func (q *priorityQueue) pop() (*loadRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.heap.Len() == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.heap.Len() == 0 {
		return nil, false
	}
	req := heap.Pop(&q.heap).(*loadRequest)
	delete(q.byKey, req.key)
	return req, true
}

func (q *priorityQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *priorityQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}
