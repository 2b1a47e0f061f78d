package handlers

import (
	"errors"
	"net/http"

	"casino_server/internal/game"
	"casino_server/internal/repository"
	"casino_server/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Rooms    *service.RoomService
	Sync     *service.SyncService
	Sessions *service.SessionService
}

func NewHandler(rooms *service.RoomService, sync *service.SyncService, sessions *service.SessionService) *Handler {
	return &Handler{Rooms: rooms, Sync: sync, Sessions: sessions}
}

// fail maps core errors to responses with a stable kind and message; no
// internal detail crosses the boundary.
func fail(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "room not found"})
		return
	}

	var ge *game.Error
	if errors.As(err, &ge) {
		status := http.StatusBadRequest
		switch ge.Kind {
		case game.KindNotYourTurn, game.KindStaleWrite:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": ge.Kind, "message": ge.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "internal error"})
}
