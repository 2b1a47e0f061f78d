package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"casino_server/internal/repository"
)

func newTestSessions(store *memStore) *SessionService {
	svc := NewSessionService(sessionStore{store}, store, NewTokenSigner("test-secret", time.Hour), SessionConfig{})
	svc.now = func() time.Time { return testClock }
	return svc
}

func TestRegisterHeartbeatDisconnect(t *testing.T) {
	store := newMemStore()
	svc := newTestSessions(store)
	ctx := context.Background()

	token, sess, err := svc.Register(ctx, "room-1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if token == "" || !sess.IsActive {
		t.Fatalf("registered session = %+v token=%q", sess, token)
	}

	svc.now = func() time.Time { return testClock.Add(10 * time.Second) }
	if err := svc.Heartbeat(ctx, token); err != nil {
		t.Fatalf("heartbeat failed: %v", err)
	}
	got, _ := store.GetSession(ctx, sess.ID)
	if !got.LastHeartbeat.Equal(testClock.Add(10 * time.Second)) {
		t.Fatalf("heartbeat not recorded: %v", got.LastHeartbeat)
	}

	if err := svc.Disconnect(ctx, token); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetSession(ctx, sess.ID)
	if got.IsActive || got.DisconnectedAt == nil {
		t.Fatalf("session after disconnect = %+v", got)
	}
}

func TestHeartbeatRejectsBadToken(t *testing.T) {
	svc := newTestSessions(newMemStore())
	if err := svc.Heartbeat(context.Background(), "not-a-token"); err == nil {
		t.Fatal("garbage token accepted")
	}
	other := NewTokenSigner("other-secret", time.Hour)
	forged, err := other.Sign("some-session")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Heartbeat(context.Background(), forged); err == nil {
		t.Fatal("token signed with the wrong secret accepted")
	}
}

func TestRegisterReactivatesExistingSession(t *testing.T) {
	store := newMemStore()
	svc := newTestSessions(store)
	ctx := context.Background()

	token, sess, err := svc.Register(ctx, "room-1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Disconnect(ctx, token); err != nil {
		t.Fatal(err)
	}

	_, again, err := svc.Register(ctx, "room-1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != sess.ID {
		t.Fatalf("reconnect created a new session %s; want %s", again.ID, sess.ID)
	}
	got, _ := store.GetSession(ctx, sess.ID)
	if !got.IsActive || got.DisconnectedAt != nil {
		t.Fatalf("session after reconnect = %+v", got)
	}
}

func TestHeartbeatReactivatesDisconnected(t *testing.T) {
	store := newMemStore()
	svc := newTestSessions(store)
	ctx := context.Background()

	token, sess, err := svc.Register(ctx, "room-1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Disconnect(ctx, token); err != nil {
		t.Fatal(err)
	}
	if err := svc.Heartbeat(ctx, token); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetSession(ctx, sess.ID)
	if !got.IsActive {
		t.Fatal("heartbeat did not reactivate the session")
	}
}

func TestStaleSweepDisconnectsSilentSessions(t *testing.T) {
	store := newMemStore()
	svc := newTestSessions(store)
	ctx := context.Background()

	_, quiet, err := svc.Register(ctx, "room-1", "alice")
	if err != nil {
		t.Fatal(err)
	}

	// A second session heartbeats just before the sweep and stays live.
	svc.now = func() time.Time { return testClock.Add(50 * time.Second) }
	liveToken, live, err := svc.Register(ctx, "room-1", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Heartbeat(ctx, liveToken); err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return testClock.Add(60 * time.Second) }
	svc.sweepStale(ctx)

	got, _ := store.GetSession(ctx, quiet.ID)
	if got.IsActive || got.DisconnectedAt == nil {
		t.Fatalf("silent session survived the sweep: %+v", got)
	}
	got, _ = store.GetSession(ctx, live.ID)
	if !got.IsActive {
		t.Fatal("live session swept")
	}
}

func TestAbandonedSweepFlagsRoomOnce(t *testing.T) {
	store := newMemStore()
	svc := newTestSessions(store)
	ctx := context.Background()

	var notified []string
	svc.OnAbandoned = func(roomID string) { notified = append(notified, roomID) }

	token, _, err := svc.Register(ctx, "room-1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Disconnect(ctx, token); err != nil {
		t.Fatal(err)
	}

	svc.sweepAbandoned(ctx)
	if flagged, _ := svc.IsAbandoned(ctx, "room-1"); !flagged {
		t.Fatal("room with disconnected player not flagged")
	}
	if len(notified) != 1 || notified[0] != "room-1" {
		t.Fatalf("notifications = %v; want one for room-1", notified)
	}

	// Already-flagged rooms do not notify again.
	svc.sweepAbandoned(ctx)
	if len(notified) != 1 {
		t.Fatalf("repeat sweep notified again: %v", notified)
	}
}

func TestReconnectClearsAbandonedFlag(t *testing.T) {
	store := newMemStore()
	svc := newTestSessions(store)
	ctx := context.Background()

	token, _, err := svc.Register(ctx, "room-1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Disconnect(ctx, token); err != nil {
		t.Fatal(err)
	}
	svc.sweepAbandoned(ctx)
	if flagged, _ := svc.IsAbandoned(ctx, "room-1"); !flagged {
		t.Fatal("room not flagged before reconnect")
	}

	// Re-registering the player lifts the flag.
	if _, _, err := svc.Register(ctx, "room-1", "alice"); err != nil {
		t.Fatal(err)
	}
	if flagged, _ := svc.IsAbandoned(ctx, "room-1"); flagged {
		t.Fatal("reconnect did not clear the abandoned flag")
	}

	// A heartbeat on a disconnected session clears it as well.
	if err := svc.Disconnect(ctx, token); err != nil {
		t.Fatal(err)
	}
	svc.sweepAbandoned(ctx)
	if err := svc.Heartbeat(ctx, token); err != nil {
		t.Fatal(err)
	}
	if flagged, _ := svc.IsAbandoned(ctx, "room-1"); flagged {
		t.Fatal("heartbeat reactivation did not clear the abandoned flag")
	}
}

func TestExpiredSweepPurges(t *testing.T) {
	store := newMemStore()
	svc := newTestSessions(store)
	ctx := context.Background()

	_, old, err := svc.Register(ctx, "room-1", "alice")
	if err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return testClock.Add(25 * time.Hour) }
	svc.sweepExpired(ctx)

	if _, err := store.GetSession(ctx, old.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expired session still present: %v", err)
	}
}
