package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Phase - room lifecycle phase
type Phase string

const (
	PhaseWaiting       Phase = "waiting"
	PhaseDealerShuffle Phase = "dealer-shuffle"
	PhaseRound1        Phase = "round1"
	PhaseRound2        Phase = "round2"
	PhaseFinished      Phase = "finished"
)

// GameState is the full mutable state of one room. It is only ever mutated
// through the move engine under the versioned-state wrapper: every committed
// mutation bumps Version by exactly one and recomputes Checksum.
type GameState struct {
	RoomID      string    `db:"room_id" json:"room_id"`
	Players     [2]string `json:"players"` // player ids; index 0 is player 1
	Phase       Phase     `json:"phase"`
	CurrentTurn int       `json:"current_turn"` // 1 or 2
	RoundNumber int       `json:"round_number"`

	Deck       []Card    `json:"deck"`
	Hands      [2][]Card `json:"hands"`
	TableCards []Card    `json:"table_cards"`
	Builds     []Build   `json:"builds"`
	Captured   [2][]Card `json:"captured"`
	Scores     [2]int    `json:"scores"`

	// LastCapturer (1 or 2, 0 = nobody yet) takes the leftover table cards
	// when the final round ends.
	LastCapturer int `json:"last_capturer"`

	Version      int64     `db:"version" json:"version"`
	Checksum     string    `db:"checksum" json:"checksum"`
	LastModified time.Time `json:"last_modified"`
	ModifiedBy   string    `json:"modified_by"`

	ShuffleComplete       bool `json:"shuffle_complete"`
	CardSelectionComplete bool `json:"card_selection_complete"`
	DealingComplete       bool `json:"dealing_complete"`
	GameStarted           bool `json:"game_started"`
	GameCompleted         bool `json:"game_completed"`

	Winner *int `json:"winner,omitempty"` // 1, 2 or nil (draw / undecided)
}

// NewGameState creates a waiting room with the first player seated.
func NewGameState(roomID, playerID string, now time.Time) *GameState {
	st := &GameState{
		RoomID:       roomID,
		Players:      [2]string{playerID, ""},
		Phase:        PhaseWaiting,
		CurrentTurn:  1,
		RoundNumber:  0,
		Version:      0,
		LastModified: now,
		ModifiedBy:   playerID,
	}
	st.Checksum = st.ComputeChecksum()
	return st
}

// PlayerNumber returns 1 or 2 for a seated player id, 0 if not seated.
func (st *GameState) PlayerNumber(playerID string) int {
	for i, p := range st.Players {
		if p != "" && p == playerID {
			return i + 1
		}
	}
	return 0
}

// Hand returns the hand of player n (1 or 2).
func (st *GameState) Hand(n int) []Card {
	return st.Hands[n-1]
}

// canonicalState is the checksum projection. It deliberately carries only
// the counts of cards per zone, not card identities: two states that differ
// only in which cards sit where (with equal counts) hash the same. Field
// order keeps the serialized keys sorted.
type canonicalState struct {
	BuildCount            int    `json:"build_count"`
	CapturedCount1        int    `json:"captured_count_1"`
	CapturedCount2        int    `json:"captured_count_2"`
	CardSelectionComplete bool   `json:"card_selection_complete"`
	CurrentTurn           int    `json:"current_turn"`
	DealingComplete       bool   `json:"dealing_complete"`
	DeckCount             int    `json:"deck_count"`
	GameCompleted         bool   `json:"game_completed"`
	GameStarted           bool   `json:"game_started"`
	HandCount1            int    `json:"hand_count_1"`
	HandCount2            int    `json:"hand_count_2"`
	Phase                 string `json:"phase"`
	RoundNumber           int    `json:"round_number"`
	Score1                int    `json:"score_1"`
	Score2                int    `json:"score_2"`
	ShuffleComplete       bool   `json:"shuffle_complete"`
	TableCount            int    `json:"table_count"`
	Version               int64  `json:"version"`
}

// CanonicalJSON serializes the checksum projection: sorted keys, no
// incidental whitespace.
func (st *GameState) CanonicalJSON() []byte {
	c := canonicalState{
		BuildCount:            len(st.Builds),
		CapturedCount1:        len(st.Captured[0]),
		CapturedCount2:        len(st.Captured[1]),
		CardSelectionComplete: st.CardSelectionComplete,
		CurrentTurn:           st.CurrentTurn,
		DealingComplete:       st.DealingComplete,
		DeckCount:             len(st.Deck),
		GameCompleted:         st.GameCompleted,
		GameStarted:           st.GameStarted,
		HandCount1:            len(st.Hands[0]),
		HandCount2:            len(st.Hands[1]),
		Phase:                 string(st.Phase),
		RoundNumber:           st.RoundNumber,
		Score1:                st.Scores[0],
		Score2:                st.Scores[1],
		ShuffleComplete:       st.ShuffleComplete,
		TableCount:            len(st.TableCards),
		Version:               st.Version,
	}
	data, _ := json.Marshal(c)
	return data
}

// ComputeChecksum hashes the canonical projection.
func (st *GameState) ComputeChecksum() string {
	sum := sha256.Sum256(st.CanonicalJSON())
	return hex.EncodeToString(sum[:])
}
