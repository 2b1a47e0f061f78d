package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"
)

// ActionType - player action kind
type ActionType string

const (
	ActionCapture    ActionType = "capture"
	ActionBuild      ActionType = "build"
	ActionTrail      ActionType = "trail"
	ActionTableBuild ActionType = "table_build"

	// lifecycle actions recorded in the same event log
	ActionJoin    ActionType = "join"
	ActionShuffle ActionType = "shuffle"
	ActionDeal    ActionType = "deal"
)

// GameEvent is one append-only entry in a room's history. SequenceNumber is
// room-scoped, assigned by the storage layer, monotonic from 1. Version is
// the room version after applying the event. Never mutated after append.
type GameEvent struct {
	RoomID         string         `db:"room_id" json:"room_id"`
	SequenceNumber int64          `db:"sequence_number" json:"sequence_number"`
	Version        int64          `db:"version" json:"version"`
	PlayerID       string         `db:"player_id" json:"player_id"`
	ActionType     ActionType     `db:"action_type" json:"action_type"`
	ActionData     map[string]any `db:"action_data" json:"action_data,omitempty"`
	Timestamp      time.Time      `db:"created_at" json:"timestamp"`
	Checksum       string         `db:"checksum" json:"checksum"`
}

// StateSnapshot is a periodic full-state copy used to bound replay cost.
// Never authoritative over the event log.
type StateSnapshot struct {
	RoomID    string     `db:"room_id" json:"room_id"`
	Version   int64      `db:"version" json:"version"`
	StateData *GameState `db:"state_data" json:"state_data"`
	Checksum  string     `db:"checksum" json:"checksum"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// ActionLogEntry deduplicates retried submissions. ActionID is derived from
// the submission content; a second submission with the same id returns the
// original Result instead of executing again.
type ActionLogEntry struct {
	ActionID       string          `db:"action_id" json:"action_id"`
	RoomID         string          `db:"room_id" json:"room_id"`
	PlayerID       string          `db:"player_id" json:"player_id"`
	ActionType     ActionType      `db:"action_type" json:"action_type"`
	ActionData     map[string]any  `db:"action_data" json:"action_data,omitempty"`
	SequenceNumber int64           `db:"sequence_number" json:"sequence_number"`
	Timestamp      time.Time       `db:"created_at" json:"timestamp"`
	Result         json.RawMessage `db:"result" json:"result,omitempty"`
}

// DeriveActionID computes the deterministic content-derived action id.
// json.Marshal sorts map keys, which makes the action data canonical.
func DeriveActionID(roomID, playerID string, actionType ActionType, actionData map[string]any, submittedAt time.Time) string {
	data, _ := json.Marshal(actionData)
	h := sha256.New()
	h.Write([]byte(roomID))
	h.Write([]byte{0})
	h.Write([]byte(playerID))
	h.Write([]byte{0})
	h.Write([]byte(actionType))
	h.Write([]byte{0})
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(submittedAt.UnixMilli(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}
