package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerSessionRequest struct {
	RoomID   string `json:"room_id" binding:"required"`
	PlayerID string `json:"player_id" binding:"required"`
}

func (h *Handler) RegisterSession(c *gin.Context) {
	var req registerSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	token, sess, err := h.Sessions.Register(c.Request.Context(), req.RoomID, req.PlayerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_token": token, "session_id": sess.ID})
}

type sessionTokenRequest struct {
	SessionToken string `json:"session_token" binding:"required"`
}

func (h *Handler) Heartbeat(c *gin.Context) {
	var req sessionTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	if err := h.Sessions.Heartbeat(c.Request.Context(), req.SessionToken); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_session", "message": "heartbeat rejected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) DisconnectSession(c *gin.Context) {
	var req sessionTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	if err := h.Sessions.Disconnect(c.Request.Context(), req.SessionToken); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_session", "message": "disconnect rejected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) RoomAbandoned(c *gin.Context) {
	abandoned, err := h.Sessions.IsAbandoned(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": c.Param("id"), "abandoned": abandoned})
}
