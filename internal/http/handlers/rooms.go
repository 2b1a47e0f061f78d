package handlers

import (
	"net/http"
	"time"

	"casino_server/internal/domain"
	"casino_server/internal/game"

	"github.com/gin-gonic/gin"
)

type createRoomRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	st, err := h.Rooms.CreateRoom(c.Request.Context(), req.PlayerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"room_id":  st.RoomID,
		"version":  st.Version,
		"checksum": st.Checksum,
		"phase":    st.Phase,
	})
}

type joinRoomRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

func (h *Handler) JoinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	res, err := h.Rooms.JoinRoom(c.Request.Context(), c.Param("id"), req.PlayerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type startGameRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

func (h *Handler) StartGame(c *gin.Context) {
	var req startGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	res, err := h.Rooms.StartGame(c.Request.Context(), c.Param("id"), req.PlayerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetState(c *gin.Context) {
	st, err := h.Rooms.GetState(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":    st,
		"version":  st.Version,
		"checksum": st.Checksum,
	})
}

type actionRequest struct {
	PlayerID       string     `json:"player_id" binding:"required"`
	ActionType     string     `json:"action_type" binding:"required"`
	CardID         string     `json:"card_id"`
	TargetCardIDs  []string   `json:"target_card_ids"`
	TargetBuildIDs []string   `json:"target_build_ids"`
	BuildValue     int        `json:"build_value"`
	Components     [][]string `json:"components"`
	SubmittedAt    int64      `json:"submitted_at"` // unix millis; keyed into the action id
}

func (h *Handler) SubmitAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	var submittedAt time.Time
	if req.SubmittedAt > 0 {
		submittedAt = time.UnixMilli(req.SubmittedAt)
	}

	res, err := h.Rooms.SubmitAction(c.Request.Context(), game.ActionRequest{
		RoomID:         c.Param("id"),
		PlayerID:       req.PlayerID,
		Type:           domain.ActionType(req.ActionType),
		CardID:         req.CardID,
		TargetCardIDs:  req.TargetCardIDs,
		TargetBuildIDs: req.TargetBuildIDs,
		BuildValue:     req.BuildValue,
		Components:     req.Components,
		SubmittedAt:    submittedAt,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
