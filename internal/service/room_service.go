package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"casino_server/internal/domain"
	"casino_server/internal/game"
	"casino_server/internal/logger"
	"casino_server/internal/pubsub"
	"casino_server/internal/repository"

	"github.com/google/uuid"
)

// DefaultSnapshotInterval - a snapshot is taken every N committed versions.
const DefaultSnapshotInterval = 10

// commitRetries bounds how often a handler re-reads and re-applies after
// losing the version race to a concurrent writer.
const commitRetries = 3

// StandardResult is what every accepted action returns, and what a
// duplicate submission returns again verbatim.
type StandardResult struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	RoomID      string       `json:"room_id"`
	Version     int64        `json:"version"`
	Checksum    string       `json:"checksum"`
	Phase       domain.Phase `json:"phase"`
	CurrentTurn int          `json:"current_turn"`
	TurnEnded   bool         `json:"turn_ended"`
	Duplicate   bool         `json:"duplicate,omitempty"`
}

// RoomService wraps the move engine with the versioned-state protocol:
// every successful execution is committed as one atomic transition that
// bumps the version, recomputes the checksum, appends an event and
// optionally snapshots, then broadcasts the committed state.
type RoomService struct {
	store   RoomStore
	actions ActionStore
	pub     pubsub.Publisher
	engine  *game.Engine

	snapshotInterval int64
	now              func() time.Time
}

func NewRoomService(store RoomStore, actions ActionStore, pub pubsub.Publisher, engine *game.Engine, snapshotInterval int64) *RoomService {
	if snapshotInterval <= 0 {
		snapshotInterval = DefaultSnapshotInterval
	}
	return &RoomService{
		store:            store,
		actions:          actions,
		pub:              pub,
		engine:           engine,
		snapshotInterval: snapshotInterval,
		now:              time.Now,
	}
}

// CreateRoom seats the first player in a fresh waiting room at version 0.
func (s *RoomService) CreateRoom(ctx context.Context, playerID string) (*domain.GameState, error) {
	if playerID == "" {
		return nil, game.NewError(game.KindValidation, "player id required")
	}
	st := domain.NewGameState(uuid.NewString(), playerID, s.now())
	if err := s.store.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	logger.Info("room created", "room_id", st.RoomID, "player_id", playerID)
	return st, nil
}

// JoinRoom seats the second player and commits the transition.
func (s *RoomService) JoinRoom(ctx context.Context, roomID, playerID string) (*StandardResult, error) {
	data := map[string]any{"player_id": playerID}
	return s.mutate(ctx, roomID, playerID, domain.ActionJoin, data, nil, func(st *domain.GameState) (bool, error) {
		return false, s.engine.Join(st, playerID)
	})
}

// StartGame shuffles and deals round 1. Only a seated player may start.
func (s *RoomService) StartGame(ctx context.Context, roomID, playerID string) (*StandardResult, error) {
	return s.mutate(ctx, roomID, playerID, domain.ActionDeal, nil, nil, func(st *domain.GameState) (bool, error) {
		if st.PlayerNumber(playerID) == 0 {
			return false, game.NewError(game.KindValidation, "player is not seated in this room")
		}
		return false, s.engine.ShuffleAndDeal(st)
	})
}

// GetState reads the committed full state.
func (s *RoomService) GetState(ctx context.Context, roomID string) (*domain.GameState, error) {
	return s.store.Get(ctx, roomID)
}

// SubmitAction runs the full action pipeline: duplicate short-circuit,
// engine execution, atomic versioned commit, broadcast. A retried
// submission with the same derived id returns the original result.
func (s *RoomService) SubmitAction(ctx context.Context, req game.ActionRequest) (*StandardResult, error) {
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = s.now()
	}
	actionID := domain.DeriveActionID(req.RoomID, req.PlayerID, req.Type, req.ActionData(), req.SubmittedAt)

	if res, ok, err := s.replayDuplicate(ctx, actionID); err != nil {
		return nil, err
	} else if ok {
		return res, nil
	}

	return s.mutate(ctx, req.RoomID, req.PlayerID, req.Type, req.ActionData(), &actionID, func(st *domain.GameState) (bool, error) {
		return s.engine.Apply(st, req)
	})
}

// replayDuplicate returns the committed result of a previous submission
// with the same action id, if one exists.
func (s *RoomService) replayDuplicate(ctx context.Context, actionID string) (*StandardResult, bool, error) {
	entry, err := s.actions.Get(ctx, actionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	DuplicateActions.Inc()
	logger.Info("duplicate submission resolved from action log", "action_id", actionID, "room_id", entry.RoomID)

	var res StandardResult
	if len(entry.Result) > 0 {
		if err := json.Unmarshal(entry.Result, &res); err != nil {
			return nil, false, fmt.Errorf("decode logged result: %w", err)
		}
	}
	res.Duplicate = true
	return &res, true, nil
}

// mutate is the single atomic transition shared by every room mutation:
// load state, apply, bump version, recompute checksum, append event,
// snapshot on the interval, commit, broadcast. Failed applications leave
// the stored state untouched; stale commits are re-read and re-applied.
func (s *RoomService) mutate(ctx context.Context, roomID, playerID string, actionType domain.ActionType, actionData map[string]any, actionID *string, apply func(*domain.GameState) (bool, error)) (*StandardResult, error) {
	var lastErr error
	for attempt := 0; attempt < commitRetries; attempt++ {
		st, err := s.store.Get(ctx, roomID)
		if err != nil {
			return nil, err
		}

		ends, err := apply(st)
		if err != nil {
			ActionsRejected.WithLabelValues(game.KindOf(err)).Inc()
			return nil, err
		}

		now := s.now()
		st.Version++
		st.LastModified = now
		st.ModifiedBy = playerID
		st.Checksum = st.ComputeChecksum()

		res := &StandardResult{
			Success:     true,
			Message:     fmt.Sprintf("%s applied", actionType),
			RoomID:      st.RoomID,
			Version:     st.Version,
			Checksum:    st.Checksum,
			Phase:       st.Phase,
			CurrentTurn: st.CurrentTurn,
			TurnEnded:   ends,
		}

		ev := &domain.GameEvent{
			RoomID:     st.RoomID,
			Version:    st.Version,
			PlayerID:   playerID,
			ActionType: actionType,
			ActionData: actionData,
			Timestamp:  now,
			Checksum:   st.Checksum,
		}

		var entry *domain.ActionLogEntry
		if actionID != nil {
			resultJSON, err := json.Marshal(res)
			if err != nil {
				return nil, err
			}
			entry = &domain.ActionLogEntry{
				ActionID:   *actionID,
				RoomID:     st.RoomID,
				PlayerID:   playerID,
				ActionType: actionType,
				ActionData: actionData,
				Timestamp:  now,
				Result:     resultJSON,
			}
		}

		var snap *domain.StateSnapshot
		if st.Version%s.snapshotInterval == 0 {
			snap = &domain.StateSnapshot{
				RoomID:    st.RoomID,
				Version:   st.Version,
				StateData: st,
				Checksum:  st.Checksum,
				CreatedAt: now,
			}
		}

		err = s.store.CommitTurn(ctx, st, ev, snap, entry)
		if errors.Is(err, repository.ErrStaleWrite) {
			StaleWrites.Inc()
			logger.Warn("stale write, retrying", "room_id", roomID, "version", st.Version, "attempt", attempt+1)
			lastErr = game.NewError(game.KindStaleWrite, "state changed underneath, retry")
			continue
		}
		if errors.Is(err, repository.ErrDuplicateAction) && actionID != nil {
			// A concurrent retry of the same submission won the commit.
			if res, ok, derr := s.replayDuplicate(ctx, *actionID); derr == nil && ok {
				return res, nil
			}
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("commit turn: %w", err)
		}

		ActionsTotal.WithLabelValues(string(actionType)).Inc()
		s.broadcast(ctx, st)
		return res, nil
	}
	return nil, lastErr
}

// broadcast publishes the committed state to the room channel. The commit
// already happened: publish failures are logged, never propagated.
func (s *RoomService) broadcast(ctx context.Context, st *domain.GameState) {
	if s.pub == nil {
		return
	}
	update := pubsub.StateUpdate{
		Type:     "state_update",
		RoomID:   st.RoomID,
		Version:  st.Version,
		Checksum: st.Checksum,
		State:    st,
	}
	data, err := json.Marshal(update)
	if err != nil {
		logger.Error("marshal state update", "error", err)
		return
	}
	if err := s.pub.Publish(ctx, st.RoomID, data); err != nil {
		PublishFailures.Inc()
		logger.Warn("broadcast publish failed", "room_id", st.RoomID, "version", st.Version, "error", err)
	}
}
