package domain

import "time"

// Session is one connection's liveness row. Liveness is tracked independent
// of game version: the background sweeps only ever touch IsActive and
// DisconnectedAt, never game state.
type Session struct {
	ID             string     `db:"id" json:"id"`
	RoomID         string     `db:"room_id" json:"room_id"`
	PlayerID       string     `db:"player_id" json:"player_id"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	LastHeartbeat  time.Time  `db:"last_heartbeat" json:"last_heartbeat"`
	DisconnectedAt *time.Time `db:"disconnected_at" json:"disconnected_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
