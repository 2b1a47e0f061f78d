// Package pubsub is the broadcast channel the core publishes committed
// state updates to. The channel is best-effort: a commit never rolls back
// because the broker was unavailable, and publishes never block
// indefinitely.
package pubsub

import (
	"context"
	"sync"

	"casino_server/internal/domain"
)

// StateUpdate is the message published to a room channel after every
// committed mutation.
type StateUpdate struct {
	Type     string            `json:"type"`
	RoomID   string            `json:"room_id"`
	Version  int64             `json:"version"`
	Checksum string            `json:"checksum"`
	State    *domain.GameState `json:"state"`
}

type Publisher interface {
	Publish(ctx context.Context, roomID string, data []byte) error
	Close() error
}

type Subscriber interface {
	// Subscribe returns a channel of raw messages for one room and a stop
	// function that releases the subscription.
	Subscribe(ctx context.Context, roomID string) (<-chan []byte, func(), error)
}

// Broker is both ends of a broadcast backend.
type Broker interface {
	Publisher
	Subscriber
}

// MemoryBroker is the in-process fallback used when no external broker is
// configured, and by tests. Slow subscribers drop messages rather than
// block the publisher.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[chan []byte]struct{})}
}

func (b *MemoryBroker) Publish(ctx context.Context, roomID string, data []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[roomID] {
		select {
		case ch <- data:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, roomID string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, 64)

	b.mu.Lock()
	if b.subs[roomID] == nil {
		b.subs[roomID] = make(map[chan []byte]struct{})
	}
	b.subs[roomID][ch] = struct{}{}
	b.mu.Unlock()

	stop := func() {
		b.mu.Lock()
		if set, ok := b.subs[roomID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, roomID)
			}
		}
		b.mu.Unlock()
	}
	return ch, stop, nil
}

func (b *MemoryBroker) Close() error {
	return nil
}
