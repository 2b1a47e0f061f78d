package service

import (
	"context"
	"time"

	"casino_server/internal/domain"
)

// RoomStore is the durable keyed storage the versioned-state wrapper runs
// on. CommitTurn must be atomic: state row, event append, action log entry
// and optional snapshot land together or not at all, and the state row is
// only replaced when its stored version is exactly one behind the commit.
type RoomStore interface {
	Create(ctx context.Context, st *domain.GameState) error
	Get(ctx context.Context, roomID string) (*domain.GameState, error)
	CommitTurn(ctx context.Context, st *domain.GameState, ev *domain.GameEvent, snap *domain.StateSnapshot, entry *domain.ActionLogEntry) error
}

// ActionStore looks up previously committed submissions by action id.
type ActionStore interface {
	Get(ctx context.Context, actionID string) (*domain.ActionLogEntry, error)
}

// EventStore reads the append-only history and its snapshots.
type EventStore interface {
	Range(ctx context.Context, roomID string, fromVersion, toVersion int64) ([]*domain.GameEvent, error)
	LatestSnapshot(ctx context.Context, roomID string) (*domain.StateSnapshot, error)
}

// SessionStore persists connection liveness rows.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	GetByRoomPlayer(ctx context.Context, roomID, playerID string) (*domain.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Reactivate(ctx context.Context, id string, at time.Time) error
	Disconnect(ctx context.Context, id string, at time.Time) error
	MarkStale(ctx context.Context, cutoff, at time.Time) (int64, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
	RoomsWithDisconnected(ctx context.Context) ([]string, error)
}

// RoomFlagStore carries the abandoned flag per room. The sweeps only ever
// touch this flag, never game state.
type RoomFlagStore interface {
	MarkAbandoned(ctx context.Context, roomID string) (bool, error)
	IsAbandoned(ctx context.Context, roomID string) (bool, error)
	ClearAbandoned(ctx context.Context, roomID string) error
}
