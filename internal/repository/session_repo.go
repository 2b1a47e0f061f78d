package repository

import (
	"context"
	"errors"
	"time"

	"casino_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (id, room_id, player_id, is_active, last_heartbeat, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.RoomID, s.PlayerID, s.IsActive, s.LastHeartbeat, s.CreatedAt,
	)
	return err
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, room_id, player_id, is_active, last_heartbeat, disconnected_at, created_at
         FROM sessions WHERE id = $1`, id))
}

// GetByRoomPlayer finds the latest session for a player in a room, used on
// reconnect to reactivate instead of piling up rows.
func (r *SessionRepository) GetByRoomPlayer(ctx context.Context, roomID, playerID string) (*domain.Session, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, room_id, player_id, is_active, last_heartbeat, disconnected_at, created_at
         FROM sessions
         WHERE room_id = $1 AND player_id = $2
         ORDER BY created_at DESC
         LIMIT 1`, roomID, playerID))
}

func (r *SessionRepository) scanOne(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.ID, &s.RoomID, &s.PlayerID, &s.IsActive, &s.LastHeartbeat, &s.DisconnectedAt, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions SET last_heartbeat = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reactivate clears disconnected state on reconnect.
func (r *SessionRepository) Reactivate(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions
         SET is_active = TRUE, disconnected_at = NULL, last_heartbeat = $1
         WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SessionRepository) Disconnect(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sessions SET is_active = FALSE, disconnected_at = $1 WHERE id = $2`, at, id)
	return err
}

// MarkStale flags every active session whose heartbeat is older than the
// cutoff as disconnected and returns how many were flagged.
func (r *SessionRepository) MarkStale(ctx context.Context, cutoff, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions
         SET is_active = FALSE, disconnected_at = $1
         WHERE is_active AND last_heartbeat < $2`, at, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PurgeExpired deletes sessions created before the absolute expiry cutoff.
func (r *SessionRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM sessions WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RoomsWithDisconnected lists rooms that have at least one disconnected
// player session, candidates for the abandoned flag.
func (r *SessionRepository) RoomsWithDisconnected(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT room_id FROM sessions
         WHERE NOT is_active AND disconnected_at IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roomIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		roomIDs = append(roomIDs, id)
	}
	return roomIDs, rows.Err()
}
