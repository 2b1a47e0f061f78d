package domain

import (
	"testing"
	"time"
)

func testState() *GameState {
	st := NewGameState("room-1", "alice", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	st.Players[1] = "bob"
	st.Phase = PhaseRound1
	st.CurrentTurn = 1
	st.RoundNumber = 1
	st.Hands[0] = []Card{card("h1", "5", SuitHearts), card("h2", "9", SuitClubs)}
	st.Hands[1] = []Card{card("h3", "K", SuitSpades)}
	st.TableCards = []Card{card("t1", "7", SuitDiamonds)}
	st.Version = 4
	return st
}

func TestChecksumDeterministic(t *testing.T) {
	st := testState()
	if st.ComputeChecksum() != st.ComputeChecksum() {
		t.Fatal("checksum not stable across calls")
	}
}

func TestChecksumTracksProjection(t *testing.T) {
	st := testState()
	base := st.ComputeChecksum()

	st.Version++
	if st.ComputeChecksum() == base {
		t.Fatal("version change did not change checksum")
	}
	st.Version--

	st.CurrentTurn = 2
	if st.ComputeChecksum() == base {
		t.Fatal("turn change did not change checksum")
	}
	st.CurrentTurn = 1

	st.Scores[0] = 5
	if st.ComputeChecksum() == base {
		t.Fatal("score change did not change checksum")
	}
	st.Scores[0] = 0

	if st.ComputeChecksum() != base {
		t.Fatal("checksum drifted after reverting fields")
	}
}

// The projection carries zone counts, not card identities: swapping which
// card sits where, with counts equal, must not move the checksum.
func TestChecksumIgnoresCardIdentity(t *testing.T) {
	st := testState()
	base := st.ComputeChecksum()

	st.TableCards = []Card{card("t9", "2", SuitClubs)}
	if st.ComputeChecksum() != base {
		t.Fatal("identity-only change moved the checksum")
	}

	st.TableCards = append(st.TableCards, card("t10", "3", SuitClubs))
	if st.ComputeChecksum() == base {
		t.Fatal("count change did not move the checksum")
	}
}

func TestDeriveActionID(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	data := map[string]any{"card_id": "c1", "build_value": 8}

	id1 := DeriveActionID("room-1", "alice", ActionBuild, data, at)
	id2 := DeriveActionID("room-1", "alice", ActionBuild, map[string]any{"build_value": 8, "card_id": "c1"}, at)
	if id1 != id2 {
		t.Fatal("action id depends on map insertion order")
	}

	if DeriveActionID("room-1", "bob", ActionBuild, data, at) == id1 {
		t.Fatal("different player produced the same action id")
	}
	if DeriveActionID("room-1", "alice", ActionBuild, data, at.Add(time.Millisecond)) == id1 {
		t.Fatal("different submission time produced the same action id")
	}
}
