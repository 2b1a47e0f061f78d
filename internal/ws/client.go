package ws

import (
	"context"
	"encoding/json"
	"time"

	"casino_server/internal/logger"
	"casino_server/internal/service"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one websocket connection subscribed to a room. Inbound traffic
// is heartbeats only; actions go through the HTTP surface. Heartbeats and
// the eventual disconnect feed the session tracker.
type Client struct {
	RoomID string
	Token  string
	Conn   *websocket.Conn
	Send   chan []byte

	hub      *Hub
	sessions *service.SessionService
}

func NewClient(roomID, token string, conn *websocket.Conn, hub *Hub, sessions *service.SessionService) *Client {
	return &Client{
		RoomID:   roomID,
		Token:    token,
		Conn:     conn,
		Send:     make(chan []byte, 64),
		hub:      hub,
		sessions: sessions,
	}
}

// Run attaches the client to the room feed and pumps until disconnect.
func (c *Client) Run() {
	if err := c.hub.Attach(c); err != nil {
		logger.Error("ws attach failed", "room_id", c.RoomID, "error", err)
		_ = c.Conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Detach(c)
		if err := c.sessions.Disconnect(context.Background(), c.Token); err != nil {
			logger.Warn("session disconnect failed", "room_id", c.RoomID, "error", err)
		}
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}

		var in struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &in); err != nil {
			continue
		}
		if in.Type == "heartbeat" {
			if err := c.sessions.Heartbeat(context.Background(), c.Token); err != nil {
				logger.Warn("heartbeat failed", "room_id", c.RoomID, "error", err)
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close shuts the connection; the read pump handles detach.
func (c *Client) Close() {
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}
