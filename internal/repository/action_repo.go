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

type ActionLogRepository struct {
	db *pgxpool.Pool
}

func NewActionLogRepository(db *pgxpool.Pool) *ActionLogRepository {
	return &ActionLogRepository{db: db}
}

// Get looks up a previously committed submission by its content-derived id.
func (r *ActionLogRepository) Get(ctx context.Context, actionID string) (*domain.ActionLogEntry, error) {
	var (
		entry    domain.ActionLogEntry
		dataJSON []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT action_id, room_id, player_id, action_type, action_data, sequence_number, result, created_at
         FROM action_log
         WHERE action_id = $1`,
		actionID,
	).Scan(&entry.ActionID, &entry.RoomID, &entry.PlayerID, &entry.ActionType,
		&dataJSON, &entry.SequenceNumber, &entry.Result, &entry.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &entry.ActionData); err != nil {
			return nil, fmt.Errorf("decode action data: %w", err)
		}
	}
	return &entry, nil
}
