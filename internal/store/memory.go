package store

import (
	"sync"
	"sync/atomic"
)

// subscriberBuffer is the channel buffer per subscriber.
const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore holds a single snapshot behind an atomic pointer, so a publish
// replaces the whole set in one step and concurrent publishers resolve as
// last writer wins.
//
// Subscribers receive snapshots via buffered channels (buffer size 100).
// Snapshots are sent non-blocking; if a subscriber's buffer is full, the
// snapshot is dropped for that subscriber to prevent blocking the cycle.
type MemoryStore struct {
	current     atomic.Pointer[Snapshot]
	subscribers map[chan Snapshot]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The store starts with an empty snapshot and is immediately ready for use.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		subscribers: make(map[chan Snapshot]struct{}),
	}
	m.current.Store(&Snapshot{Servers: []ServerSummary{}})
	return m
}

// Publish stores a copy of snap as the current snapshot and notifies all
// subscribers (unless their buffer is full).
func (m *MemoryStore) Publish(snap Snapshot) {
	stored := snap.Clone()
	m.current.Store(&stored)

	m.notifySubscribers(stored)
}

// Current returns a copy of the current snapshot.
func (m *MemoryStore) Current() Snapshot {
	return m.current.Load().Clone()
}

// Subscribe creates a new subscription and returns a channel for receiving
// snapshots.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new snapshots are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Snapshot) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	// find and delete the channel (need to convert to the right type)
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (m *MemoryStore) SubscriberCount() int {
	m.subMu.RLock()
	defer m.subMu.RUnlock()
	return len(m.subscribers)
}

// notifySubscribers sends the snapshot to all active subscribers.
//
// This is non-blocking: if a subscriber's channel buffer is full, the message
// is dropped for that subscriber rather than blocking the publish path.
func (m *MemoryStore) notifySubscribers(snap Snapshot) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- snap.Clone():
		default:
			// subscriber is slow, drop the message
		}
	}
}
