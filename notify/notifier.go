// Package notify implements the northbound push-notification hub: callers
// subscribe to per-database version-change signals so they can react to a
// committed delta without polling catalog.Catalog.LastPublishedTopic.
package notify

import (
	"sync"
	"sync/atomic"
)

// defaultSignalBufferSize is the buffer size for signal channels.
// Sized to handle typical burst rates while keeping memory low.
// Subscribers that can't keep up will have signals dropped (non-blocking send).
const defaultSignalBufferSize = 16

// Filter restricts a subscription to a set of databases. An empty/nil
// Databases list matches every database.
type Filter struct {
	Databases []string
}

// Signal is delivered to subscribers when a database's objects are touched
// by a committed delta (spec.md §4.4 CommitDelta).
type Signal struct {
	Database string
	Version  uint64
}

// subscription represents a single subscriber.
type subscription struct {
	id     uint64
	filter Filter
	ch     chan Signal
	closed atomic.Bool
}

// matches checks if the database matches this subscription's filter.
func (s *subscription) matches(database string) bool {
	// nil or empty = all databases
	if len(s.filter.Databases) == 0 {
		return true
	}

	for _, db := range s.filter.Databases {
		if db == database {
			return true
		}
	}
	return false
}

// close closes the subscription channel if not already closed.
func (s *subscription) close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.ch)
	}
}

// Hub is a thread-safe fan-out of version-change signals.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[uint64]*subscription
	nextID        atomic.Uint64
}

// NewHub creates a new notification hub.
func NewHub() *Hub {
	return &Hub{
		subscriptions: make(map[uint64]*subscription),
	}
}

// Signal sends a signal to all matching subscribers (non-blocking).
func (h *Hub) Signal(database string, version uint64) {
	signal := Signal{
		Database: database,
		Version:  version,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscriptions {
		if !sub.matches(database) {
			continue
		}

		// Non-blocking send - drop if buffer full.
		select {
		case sub.ch <- signal:
		default:
			// Buffer full, skip this subscriber.
		}
	}
}

// Subscribe creates a new subscription and returns the signal channel and cancel function.
// The returned channel is buffered. If the subscriber cannot keep up with the signal rate,
// signals will be dropped silently by Signal(). The cancel function is idempotent.
func (h *Hub) Subscribe(filter Filter) (<-chan Signal, func()) {
	sub := &subscription{
		id:     h.nextID.Add(1),
		filter: filter,
		ch:     make(chan Signal, defaultSignalBufferSize),
	}

	h.mu.Lock()
	h.subscriptions[sub.id] = sub
	h.mu.Unlock()

	cancel := func() {
		h.unsubscribe(sub.id)
	}

	return sub.ch, cancel
}

// unsubscribe removes a subscription and closes its channel.
func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	sub, ok := h.subscriptions[id]
	if ok {
		delete(h.subscriptions, id)
	}
	h.mu.Unlock()

	if ok {
		sub.close()
	}
}
