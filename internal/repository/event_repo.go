package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"casino_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Range returns the events whose version falls in [fromVersion, toVersion],
// ordered by sequence number.
func (r *EventRepository) Range(ctx context.Context, roomID string, fromVersion, toVersion int64) ([]*domain.GameEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT room_id, sequence_number, version, player_id, action_type, action_data, checksum, created_at
         FROM game_events
         WHERE room_id = $1 AND version >= $2 AND version <= $3
         ORDER BY sequence_number`,
		roomID, fromVersion, toVersion,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.GameEvent
	for rows.Next() {
		var (
			ev       domain.GameEvent
			dataJSON []byte
		)
		if err := rows.Scan(&ev.RoomID, &ev.SequenceNumber, &ev.Version, &ev.PlayerID,
			&ev.ActionType, &dataJSON, &ev.Checksum, &ev.Timestamp); err != nil {
			return nil, err
		}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &ev.ActionData); err != nil {
				return nil, fmt.Errorf("decode event data: %w", err)
			}
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// LatestSnapshot returns the most recent snapshot for the room.
func (r *EventRepository) LatestSnapshot(ctx context.Context, roomID string) (*domain.StateSnapshot, error) {
	var (
		snap     domain.StateSnapshot
		snapJSON []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT room_id, version, state_data, checksum, created_at
         FROM state_snapshots
         WHERE room_id = $1
         ORDER BY version DESC
         LIMIT 1`,
		roomID,
	).Scan(&snap.RoomID, &snap.Version, &snapJSON, &snap.Checksum, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	snap.StateData = &domain.GameState{}
	if err := json.Unmarshal(snapJSON, snap.StateData); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
