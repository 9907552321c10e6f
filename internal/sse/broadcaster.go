package sse

import (
	"sync"
	"sync/atomic"
)

// Event types published by envkeep.
const (
	EventEnvUpdated    = "env_updated"
	EventEnvChanged    = "env_changed" // external edit seen by the watcher
	EventKeySet        = "key_set"
	EventKeyUnset      = "key_unset"
	EventBackupCreated = "backup_created"
	EventRestored      = "restored"
)

// Event is one SSE event sent to connected clients.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Broadcaster fans out env-file events to all connected SSE clients.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[uint64]chan Event
	nextID  atomic.Uint64
}

// NewBroadcaster creates a new SSE broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[uint64]chan Event),
	}
}

// Subscribe registers a new client and returns a channel to receive events
// and a function to unsubscribe.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)
	id := b.nextID.Add(1)

	b.mu.Lock()
	b.clients[id] = ch
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		delete(b.clients, id)
		b.mu.Unlock()
		// Drain anything already buffered; the channel itself is closed
		// only by Close.
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
			default:
				return
			}
		}
	}

	return ch, unsub
}

// Publish sends an event to all connected clients.
// Non-blocking: if a client's buffer is full, the event is dropped for that client.
func (b *Broadcaster) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.clients {
		select {
		case ch <- event:
		default:
			// Client too slow, drop event
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close closes all client channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.clients {
		close(ch)
		delete(b.clients, id)
	}
}
