package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"casino_server/internal/domain"
	"casino_server/internal/repository"
)

// memStore backs the service tests with the same commit semantics as the
// postgres layer: version-checked state replacement, append-only events,
// action-id dedup and optional snapshots, all inside one lock.
type memStore struct {
	mu        sync.Mutex
	rooms     map[string]*domain.GameState
	events    map[string][]*domain.GameEvent
	snapshots map[string][]*domain.StateSnapshot
	actions   map[string]*domain.ActionLogEntry
	abandoned map[string]bool

	sessions map[string]*domain.Session

	// staleRemaining makes the next N commits lose the version race: the
	// stored version is bumped as if a concurrent writer won.
	staleRemaining int
}

func newMemStore() *memStore {
	return &memStore{
		rooms:     make(map[string]*domain.GameState),
		events:    make(map[string][]*domain.GameEvent),
		snapshots: make(map[string][]*domain.StateSnapshot),
		actions:   make(map[string]*domain.ActionLogEntry),
		abandoned: make(map[string]bool),
		sessions:  make(map[string]*domain.Session),
	}
}

func cloneState(st *domain.GameState) *domain.GameState {
	data, err := json.Marshal(st)
	if err != nil {
		panic(err)
	}
	out := &domain.GameState{}
	if err := json.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

func (m *memStore) Create(ctx context.Context, st *domain.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[st.RoomID] = cloneState(st)
	return nil
}

func (m *memStore) Get(ctx context.Context, roomID string) (*domain.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.rooms[roomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneState(st), nil
}

func (m *memStore) CommitTurn(ctx context.Context, st *domain.GameState, ev *domain.GameEvent, snap *domain.StateSnapshot, entry *domain.ActionLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.rooms[st.RoomID]
	if !ok {
		return repository.ErrNotFound
	}
	if m.staleRemaining > 0 {
		m.staleRemaining--
		stored.Version++
		return repository.ErrStaleWrite
	}
	if stored.Version != st.Version-1 {
		return repository.ErrStaleWrite
	}
	if entry != nil {
		if _, dup := m.actions[entry.ActionID]; dup {
			return repository.ErrDuplicateAction
		}
	}

	m.rooms[st.RoomID] = cloneState(st)

	evCopy := *ev
	evCopy.SequenceNumber = int64(len(m.events[st.RoomID])) + 1
	m.events[st.RoomID] = append(m.events[st.RoomID], &evCopy)

	if entry != nil {
		entryCopy := *entry
		entryCopy.SequenceNumber = evCopy.SequenceNumber
		m.actions[entry.ActionID] = &entryCopy
	}
	if snap != nil {
		snapCopy := *snap
		snapCopy.StateData = cloneState(snap.StateData)
		kept := m.snapshots[st.RoomID][:0]
		for _, s := range m.snapshots[st.RoomID] {
			if s.Version >= snapCopy.Version {
				kept = append(kept, s)
			}
		}
		m.snapshots[st.RoomID] = append(kept, &snapCopy)
	}
	return nil
}

func (m *memStore) Range(ctx context.Context, roomID string, fromVersion, toVersion int64) ([]*domain.GameEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.GameEvent
	for _, ev := range m.events[roomID] {
		if ev.Version >= fromVersion && ev.Version <= toVersion {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memStore) LatestSnapshot(ctx context.Context, roomID string) (*domain.StateSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.snapshots[roomID]
	if len(snaps) == 0 {
		return nil, repository.ErrNotFound
	}
	latest := snaps[0]
	for _, s := range snaps[1:] {
		if s.Version > latest.Version {
			latest = s
		}
	}
	return latest, nil
}

func (m *memStore) GetAction(ctx context.Context, actionID string) (*domain.ActionLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.actions[actionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return entry, nil
}

// actionReader adapts memStore to the ActionStore interface.
type actionReader struct{ *memStore }

func (a actionReader) Get(ctx context.Context, actionID string) (*domain.ActionLogEntry, error) {
	return a.GetAction(ctx, actionID)
}

func (m *memStore) MarkAbandoned(ctx context.Context, roomID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.abandoned[roomID] {
		return false, nil
	}
	m.abandoned[roomID] = true
	return true, nil
}

func (m *memStore) IsAbandoned(ctx context.Context, roomID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.abandoned[roomID], nil
}

func (m *memStore) ClearAbandoned(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.abandoned, roomID)
	return nil
}

func (m *memStore) CreateSession(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) GetByRoomPlayer(ctx context.Context, roomID, playerID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.RoomID == roomID && s.PlayerID == playerID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) Touch(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.LastHeartbeat = at
	return nil
}

func (m *memStore) Reactivate(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = true
	s.DisconnectedAt = nil
	s.LastHeartbeat = at
	return nil
}

func (m *memStore) Disconnect(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = false
	s.DisconnectedAt = &at
	return nil
}

func (m *memStore) MarkStale(ctx context.Context, cutoff, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.sessions {
		if s.IsActive && s.LastHeartbeat.Before(cutoff) {
			s.IsActive = false
			s.DisconnectedAt = &at
			n++
		}
	}
	return n, nil
}

func (m *memStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.CreatedAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) RoomsWithDisconnected(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, s := range m.sessions {
		if !s.IsActive && !seen[s.RoomID] {
			seen[s.RoomID] = true
			out = append(out, s.RoomID)
		}
	}
	return out, nil
}

// sessionStore adapts memStore to the SessionStore interface.
type sessionStore struct{ *memStore }

func (s sessionStore) Create(ctx context.Context, sess *domain.Session) error {
	return s.CreateSession(ctx, sess)
}

func (s sessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.GetSession(ctx, id)
}
