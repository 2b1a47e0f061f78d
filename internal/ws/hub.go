package ws

import (
	"context"
	"sync"

	"casino_server/internal/logger"
	"casino_server/internal/pubsub"
)

// Hub fans committed state updates out to the websocket clients of each
// room. It holds one broker subscription per room with at least one client,
// regardless of how many server instances published the update.
type Hub struct {
	sub pubsub.Subscriber

	mu    sync.RWMutex
	rooms map[string]*roomFeed
}

type roomFeed struct {
	clients map[*Client]struct{}
	stop    func()
}

func NewHub(sub pubsub.Subscriber) *Hub {
	return &Hub{
		sub:   sub,
		rooms: make(map[string]*roomFeed),
	}
}

// Attach adds a client to its room's feed, opening the broker subscription
// when this is the room's first client.
func (h *Hub) Attach(c *Client) error {
	h.mu.Lock()
	feed, ok := h.rooms[c.RoomID]
	if ok {
		feed.clients[c] = struct{}{}
		h.mu.Unlock()
		return nil
	}

	feed = &roomFeed{clients: map[*Client]struct{}{c: {}}}
	h.rooms[c.RoomID] = feed
	h.mu.Unlock()

	ch, stop, err := h.sub.Subscribe(context.Background(), c.RoomID)
	if err != nil {
		h.mu.Lock()
		delete(h.rooms, c.RoomID)
		h.mu.Unlock()
		return err
	}

	// The feed may have been removed by Shutdown while Subscribe was in
	// flight; stop must be assigned under the lock or it leaks.
	h.mu.Lock()
	if h.rooms[c.RoomID] != feed {
		h.mu.Unlock()
		stop()
		return nil
	}
	feed.stop = stop
	h.mu.Unlock()

	go h.relay(c.RoomID, ch)
	logger.Info("room feed opened", "room_id", c.RoomID)
	return nil
}

// Detach removes a client; the last client out closes the subscription.
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	feed, ok := h.rooms[c.RoomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(feed.clients, c)
	var stop func()
	if len(feed.clients) == 0 {
		stop = feed.stop
		delete(h.rooms, c.RoomID)
	}
	h.mu.Unlock()

	if stop != nil {
		stop()
		logger.Info("room feed closed", "room_id", c.RoomID)
	}
}

// relay forwards broker messages to every attached client. Slow clients
// drop messages; they recover through the sync endpoint.
func (h *Hub) relay(roomID string, ch <-chan []byte) {
	for msg := range ch {
		h.mu.RLock()
		feed, ok := h.rooms[roomID]
		if !ok {
			h.mu.RUnlock()
			return
		}
		for c := range feed.clients {
			select {
			case c.Send <- msg:
			default:
				logger.Warn("ws client lagging, dropping update", "room_id", roomID)
			}
		}
		h.mu.RUnlock()
	}
}

// Shutdown closes every room feed and client connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, feed := range h.rooms {
		if feed.stop != nil {
			feed.stop()
		}
		for c := range feed.clients {
			c.Close()
		}
		delete(h.rooms, roomID)
	}
}
