package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"casino_server/internal/domain"
	"casino_server/internal/logger"
	"casino_server/internal/repository"

	"github.com/google/uuid"
)

// SessionConfig holds the sweep intervals. A session whose heartbeat is
// older than HeartbeatInterval is marked disconnected; sessions older than
// ExpireAfter are purged on the slower sweep; rooms with a disconnected
// player are flagged abandoned on the third sweep.
type SessionConfig struct {
	HeartbeatInterval time.Duration // default 30s
	ExpireAfter       time.Duration // default 24h
	ExpireSweep       time.Duration // default 1h
	AbandonedSweep    time.Duration // default 60s
}

func (c *SessionConfig) defaults() {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.ExpireAfter <= 0 {
		c.ExpireAfter = 24 * time.Hour
	}
	if c.ExpireSweep <= 0 {
		c.ExpireSweep = time.Hour
	}
	if c.AbandonedSweep <= 0 {
		c.AbandonedSweep = 60 * time.Second
	}
}

// AbandonedFunc is invoked once per room when it transitions to abandoned.
// Delivery of any notification is up to the callback.
type AbandonedFunc func(roomID string)

// SessionService tracks per-connection liveness independent of the game
// version, and runs the background sweeps. The sweeps only transition
// liveness fields, never game state, so they cannot race with the engine.
type SessionService struct {
	sessions SessionStore
	rooms    RoomFlagStore
	tokens   *TokenSigner
	cfg      SessionConfig

	// OnAbandoned is the notification stub for downstream delivery.
	OnAbandoned AbandonedFunc

	now    func() time.Time
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSessionService(sessions SessionStore, rooms RoomFlagStore, tokens *TokenSigner, cfg SessionConfig) *SessionService {
	cfg.defaults()
	return &SessionService{
		sessions: sessions,
		rooms:    rooms,
		tokens:   tokens,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Register creates a session for a connection, or reactivates the player's
// existing one on reconnect, and returns its token.
func (s *SessionService) Register(ctx context.Context, roomID, playerID string) (string, *domain.Session, error) {
	now := s.now()

	existing, err := s.sessions.GetByRoomPlayer(ctx, roomID, playerID)
	if err == nil {
		if err := s.sessions.Reactivate(ctx, existing.ID, now); err != nil {
			return "", nil, err
		}
		s.clearAbandoned(ctx, roomID)
		existing.IsActive = true
		existing.DisconnectedAt = nil
		existing.LastHeartbeat = now
		token, err := s.tokens.Sign(existing.ID)
		if err != nil {
			return "", nil, err
		}
		logger.Info("session reactivated", "session_id", existing.ID, "room_id", roomID, "player_id", playerID)
		return token, existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, err
	}

	sess := &domain.Session{
		ID:            uuid.NewString(),
		RoomID:        roomID,
		PlayerID:      playerID,
		IsActive:      true,
		LastHeartbeat: now,
		CreatedAt:     now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Sign(sess.ID)
	if err != nil {
		return "", nil, err
	}
	logger.Info("session registered", "session_id", sess.ID, "room_id", roomID, "player_id", playerID)
	return token, sess, nil
}

// Heartbeat refreshes liveness for the token's session; a session already
// marked disconnected is reactivated.
func (s *SessionService) Heartbeat(ctx context.Context, token string) error {
	sid, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}

	sess, err := s.sessions.Get(ctx, sid)
	if err != nil {
		return err
	}
	if !sess.IsActive {
		if err := s.sessions.Reactivate(ctx, sid, s.now()); err != nil {
			return err
		}
		s.clearAbandoned(ctx, sess.RoomID)
		return nil
	}
	return s.sessions.Touch(ctx, sid, s.now())
}

// clearAbandoned lifts the abandoned flag when a player comes back. If the
// other player is still gone the next sweep flags the room again.
func (s *SessionService) clearAbandoned(ctx context.Context, roomID string) {
	if err := s.rooms.ClearAbandoned(ctx, roomID); err != nil {
		logger.Warn("clear abandoned failed", "room_id", roomID, "error", err)
	}
}

// Disconnect marks the token's session disconnected immediately.
func (s *SessionService) Disconnect(ctx context.Context, token string) error {
	sid, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	return s.sessions.Disconnect(ctx, sid, s.now())
}

// IsAbandoned reports whether the room has been flagged abandoned.
func (s *SessionService) IsAbandoned(ctx context.Context, roomID string) (bool, error) {
	return s.rooms.IsAbandoned(ctx, roomID)
}

// Start launches the three periodic sweeps. Each tick opens its own storage
// calls and tolerates overlap with foreground handling.
func (s *SessionService) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(3)
	go s.loop(ctx, s.cfg.HeartbeatInterval, s.sweepStale)
	go s.loop(ctx, s.cfg.ExpireSweep, s.sweepExpired)
	go s.loop(ctx, s.cfg.AbandonedSweep, s.sweepAbandoned)
}

// Stop cancels the sweeps and waits for them to finish.
func (s *SessionService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SessionService) loop(ctx context.Context, interval time.Duration, sweep func(context.Context)) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

// sweepStale flags sessions whose heartbeat aged past the sweep interval.
func (s *SessionService) sweepStale(ctx context.Context) {
	now := s.now()
	n, err := s.sessions.MarkStale(ctx, now.Add(-s.cfg.HeartbeatInterval), now)
	if err != nil {
		logger.Error("heartbeat sweep failed", "error", err)
		return
	}
	if n > 0 {
		SessionsMarkedStale.Add(float64(n))
		logger.Info("sessions marked disconnected", "count", n)
	}
}

// sweepExpired purges sessions past the absolute expiry.
func (s *SessionService) sweepExpired(ctx context.Context) {
	n, err := s.sessions.PurgeExpired(ctx, s.now().Add(-s.cfg.ExpireAfter))
	if err != nil {
		logger.Error("session purge failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("expired sessions purged", "count", n)
	}
}

// sweepAbandoned flags rooms with at least one disconnected player.
func (s *SessionService) sweepAbandoned(ctx context.Context) {
	roomIDs, err := s.sessions.RoomsWithDisconnected(ctx)
	if err != nil {
		logger.Error("abandoned sweep failed", "error", err)
		return
	}
	for _, roomID := range roomIDs {
		changed, err := s.rooms.MarkAbandoned(ctx, roomID)
		if err != nil {
			logger.Error("mark abandoned failed", "room_id", roomID, "error", err)
			continue
		}
		if changed {
			RoomsAbandoned.Inc()
			logger.Warn("room flagged abandoned", "room_id", roomID)
			if s.OnAbandoned != nil {
				s.OnAbandoned(roomID)
			}
		}
	}
}
