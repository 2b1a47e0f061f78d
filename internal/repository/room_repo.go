package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"casino_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, st *domain.GameState) error {
	stateJSON, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO rooms (id, state, version, checksum, modified_by, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		st.RoomID, stateJSON, st.Version, st.Checksum, st.ModifiedBy, st.LastModified,
	)
	return err
}

func (r *RoomRepository) Get(ctx context.Context, roomID string) (*domain.GameState, error) {
	var stateJSON []byte
	err := r.db.QueryRow(ctx,
		`SELECT state FROM rooms WHERE id = $1`, roomID,
	).Scan(&stateJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var st domain.GameState
	if err := json.Unmarshal(stateJSON, &st); err != nil {
		return nil, fmt.Errorf("decode room state: %w", err)
	}
	return &st, nil
}

// CommitTurn persists one state transition as a single transaction: the
// room row is replaced only if its stored version is exactly st.Version-1,
// the event is appended with a storage-assigned sequence number, the action
// log entry is inserted, and a snapshot is stored when provided. No reader
// ever observes a state whose version does not match its checksum.
func (r *RoomRepository) CommitTurn(ctx context.Context, st *domain.GameState, ev *domain.GameEvent, snap *domain.StateSnapshot, entry *domain.ActionLogEntry) error {
	stateJSON, err := json.Marshal(st)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE rooms
         SET state = $1, version = $2, checksum = $3, modified_by = $4, updated_at = $5
         WHERE id = $6 AND version = $7`,
		stateJSON, st.Version, st.Checksum, st.ModifiedBy, st.LastModified,
		st.RoomID, st.Version-1,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrStaleWrite
	}

	actionJSON, err := json.Marshal(ev.ActionData)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO game_events (room_id, sequence_number, version, player_id, action_type, action_data, checksum, created_at)
         VALUES ($1,
                 (SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM game_events WHERE room_id = $1),
                 $2, $3, $4, $5, $6, $7)
         RETURNING sequence_number`,
		ev.RoomID, ev.Version, ev.PlayerID, ev.ActionType, actionJSON, ev.Checksum, ev.Timestamp,
	).Scan(&ev.SequenceNumber)
	if err != nil {
		return err
	}

	if entry != nil {
		entry.SequenceNumber = ev.SequenceNumber
		entryJSON, err := json.Marshal(entry.ActionData)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO action_log (action_id, room_id, player_id, action_type, action_data, sequence_number, result, created_at)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			entry.ActionID, entry.RoomID, entry.PlayerID, entry.ActionType, entryJSON,
			entry.SequenceNumber, entry.Result, entry.Timestamp,
		)
		if err != nil {
			return translateConflict(err)
		}
	}

	if snap != nil {
		snapJSON, err := json.Marshal(snap.StateData)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO state_snapshots (room_id, version, state_data, checksum, created_at)
             VALUES ($1, $2, $3, $4, $5)
             ON CONFLICT (room_id, version) DO NOTHING`,
			snap.RoomID, snap.Version, snapJSON, snap.Checksum, snap.CreatedAt,
		)
		if err != nil {
			return err
		}

		// Only the newest snapshot is kept; the event log stays the
		// authoritative history.
		_, err = tx.Exec(ctx,
			`DELETE FROM state_snapshots
             WHERE room_id = $1
               AND version < (SELECT MAX(version) FROM state_snapshots WHERE room_id = $1)`,
			snap.RoomID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *RoomRepository) MarkAbandoned(ctx context.Context, roomID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE rooms SET abandoned = TRUE WHERE id = $1 AND NOT abandoned`, roomID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RoomRepository) IsAbandoned(ctx context.Context, roomID string) (bool, error) {
	var abandoned bool
	err := r.db.QueryRow(ctx,
		`SELECT abandoned FROM rooms WHERE id = $1`, roomID,
	).Scan(&abandoned)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return abandoned, err
}

func (r *RoomRepository) ClearAbandoned(ctx context.Context, roomID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE rooms SET abandoned = FALSE WHERE id = $1`, roomID)
	return err
}

// translateConflict maps a postgres unique violation to the package
// sentinel so callers can resolve duplicates transparently.
func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateAction
	}
	return err
}
