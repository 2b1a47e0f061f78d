package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SyncCheck compares the client-reported version with the server's and
// returns the missing range. With ?full=1, or when the gap is stale, the
// response carries a snapshot plus the events after it.
func (h *Handler) SyncCheck(c *gin.Context) {
	roomID := c.Param("id")

	clientVersion, err := strconv.ParseInt(c.Query("version"), 10, 64)
	if err != nil || clientVersion < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "version must be a non-negative integer"})
		return
	}

	res, err := h.Sync.Check(c.Request.Context(), roomID, clientVersion)
	if err != nil {
		fail(c, err)
		return
	}

	if c.Query("full") == "1" || res.Stale {
		snap, tail, err := h.Sync.FullResync(c.Request.Context(), roomID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sync": res, "snapshot": snap, "events": tail})
		return
	}

	if res.HasGap {
		events, err := h.Sync.MissingEvents(c.Request.Context(), roomID, clientVersion)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sync": res, "events": events})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sync": res})
}

// Events serves a raw slice of the append-only history.
func (h *Handler) Events(c *gin.Context) {
	from, err1 := strconv.ParseInt(c.DefaultQuery("from", "1"), 10, 64)
	to, err2 := strconv.ParseInt(c.DefaultQuery("to", "9223372036854775807"), 10, 64)
	if err1 != nil || err2 != nil || from < 0 || to < from {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "invalid version range"})
		return
	}

	events, err := h.Sync.MissingEventsRange(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
