package handlers

import (
	"net/http"
	"os"

	"casino_server/internal/logger"
	"casino_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades a connection and subscribes it to its room's state updates.
// The session token doubles as the ws credential.
func (h *Handler) WS(hub *ws.Hub) gin.HandlerFunc {
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		roomID := c.Query("room")
		if token == "" || roomID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "validation_error", "message": "token and room required"})
			return
		}

		// Validate the token before upgrading.
		if err := h.Sessions.Heartbeat(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_session", "message": "invalid session token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := ws.NewClient(roomID, token, conn, hub, h.Sessions)
		go client.Run()
	}
}
