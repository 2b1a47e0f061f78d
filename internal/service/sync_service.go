package service

import (
	"context"
	"errors"

	"casino_server/internal/domain"
	"casino_server/internal/gamesync"
	"casino_server/internal/repository"
)

// SyncResponse is the answer to a client sync check: the version
// classification plus the event range the client has to replay, or a hint
// to fetch a full snapshot when the gap is no longer bounded.
type SyncResponse struct {
	RoomID          string  `json:"room_id"`
	ClientVersion   int64   `json:"client_version"`
	ServerVersion   int64   `json:"server_version"`
	Valid           bool    `json:"valid"`
	HasGap          bool    `json:"has_gap"`
	GapSize         int64   `json:"gap_size"`
	RequiresSync    bool    `json:"requires_sync"`
	Stale           bool    `json:"stale"`
	Message         string  `json:"message"`
	MissingVersions []int64 `json:"missing_versions,omitempty"`
}

type SyncService struct {
	rooms  RoomStore
	events EventStore
	maxGap int64
}

func NewSyncService(rooms RoomStore, events EventStore, maxGap int64) *SyncService {
	if maxGap <= 0 {
		maxGap = gamesync.DefaultMaxGap
	}
	return &SyncService{rooms: rooms, events: events, maxGap: maxGap}
}

// Check classifies the client's version against the committed server state.
func (s *SyncService) Check(ctx context.Context, roomID string, clientVersion int64) (*SyncResponse, error) {
	st, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	check := gamesync.Check(clientVersion, st.Version)
	if check.HasGap {
		SyncGaps.Inc()
	}

	return &SyncResponse{
		RoomID:          roomID,
		ClientVersion:   clientVersion,
		ServerVersion:   st.Version,
		Valid:           check.Valid,
		HasGap:          check.HasGap,
		GapSize:         check.GapSize,
		RequiresSync:    check.RequiresSync,
		Stale:           gamesync.IsStale(clientVersion, st.Version, s.maxGap),
		Message:         check.Message,
		MissingVersions: gamesync.MissingVersions(clientVersion, st.Version),
	}, nil
}

// MissingEvents returns the events a behind client has to replay, in order.
func (s *SyncService) MissingEvents(ctx context.Context, roomID string, clientVersion int64) ([]*domain.GameEvent, error) {
	st, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if clientVersion >= st.Version {
		return nil, nil
	}
	return s.events.Range(ctx, roomID, clientVersion+1, st.Version)
}

// MissingEventsRange returns the events with versions in [from, to].
func (s *SyncService) MissingEventsRange(ctx context.Context, roomID string, from, to int64) ([]*domain.GameEvent, error) {
	return s.events.Range(ctx, roomID, from, to)
}

// FullResync hands out the latest snapshot plus the events committed after
// it. Rooms that never snapshotted get a synthetic snapshot of the current
// state; the event log stays authoritative either way.
func (s *SyncService) FullResync(ctx context.Context, roomID string) (*domain.StateSnapshot, []*domain.GameEvent, error) {
	snap, err := s.events.LatestSnapshot(ctx, roomID)
	if errors.Is(err, repository.ErrNotFound) {
		st, gerr := s.rooms.Get(ctx, roomID)
		if gerr != nil {
			return nil, nil, gerr
		}
		return &domain.StateSnapshot{
			RoomID:    roomID,
			Version:   st.Version,
			StateData: st,
			Checksum:  st.Checksum,
			CreatedAt: st.LastModified,
		}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	st, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	tail, err := s.events.Range(ctx, roomID, snap.Version+1, st.Version)
	if err != nil {
		return nil, nil, err
	}
	return snap, tail, nil
}
