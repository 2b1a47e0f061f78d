package game

import (
	"math/rand"
	"testing"

	"casino_server/internal/domain"
)

func card(id, rank string, suit domain.Suit) domain.Card {
	values := map[string]int{
		"A": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7,
		"8": 8, "9": 9, "10": 10, "J": 11, "Q": 12, "K": 13,
	}
	return domain.Card{ID: id, Suit: suit, Rank: rank, Value: values[rank]}
}

func TestCalculateScore(t *testing.T) {
	pile := []domain.Card{
		card("1", "A", domain.SuitHearts),   // 1
		card("2", "A", domain.SuitClubs),    // 1
		card("3", "2", domain.SuitSpades),   // 1
		card("4", "10", domain.SuitDiamonds), // 2
		card("5", "2", domain.SuitHearts),   // 0
		card("6", "10", domain.SuitClubs),   // 0
		card("7", "K", domain.SuitSpades),   // 0
	}
	if got := CalculateScore(pile); got != 5 {
		t.Fatalf("CalculateScore = %d; want 5", got)
	}
}

func TestCalculateScoreOrderInvariant(t *testing.T) {
	pile := []domain.Card{
		card("1", "A", domain.SuitHearts),
		card("2", "2", domain.SuitSpades),
		card("3", "10", domain.SuitDiamonds),
		card("4", "7", domain.SuitClubs),
		card("5", "Q", domain.SuitHearts),
	}
	want := CalculateScore(pile)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(pile), func(a, b int) { pile[a], pile[b] = pile[b], pile[a] })
		if got := CalculateScore(pile); got != want {
			t.Fatalf("score changed under reordering: %d != %d", got, want)
		}
	}
}

func TestCalculateBonusScores(t *testing.T) {
	spade := func(id, rank string) domain.Card { return card(id, rank, domain.SuitSpades) }
	heart := func(id, rank string) domain.Card { return card(id, rank, domain.SuitHearts) }

	cases := []struct {
		name     string
		p1, p2   []domain.Card
		w1, w2   int
	}{
		{"more cards and spades", []domain.Card{spade("1", "3"), spade("2", "4"), heart("3", "5")}, []domain.Card{heart("4", "6")}, 3, 0},
		{"split", []domain.Card{heart("1", "3"), heart("2", "4")}, []domain.Card{spade("3", "5")}, 1, 2},
		{"all tied", []domain.Card{spade("1", "3")}, []domain.Card{spade("2", "4")}, 0, 0},
	}
	for _, tc := range cases {
		b1, b2 := CalculateBonusScores(tc.p1, tc.p2)
		if b1 != tc.w1 || b2 != tc.w2 {
			t.Fatalf("%s: bonuses = (%d,%d); want (%d,%d)", tc.name, b1, b2, tc.w1, tc.w2)
		}
	}
}

func TestDetermineWinner(t *testing.T) {
	cases := []struct {
		s1, s2, c1, c2 int
		want           int
	}{
		{5, 3, 20, 32, 1},
		{3, 5, 32, 20, 2},
		{4, 4, 30, 22, 1},
		{4, 4, 22, 30, 2},
		{4, 4, 26, 26, 0},
	}
	for _, tc := range cases {
		if got := DetermineWinner(tc.s1, tc.s2, tc.c1, tc.c2); got != tc.want {
			t.Fatalf("DetermineWinner(%d,%d,%d,%d) = %d; want %d", tc.s1, tc.s2, tc.c1, tc.c2, got, tc.want)
		}
	}
}

func TestDetermineWinnerAntisymmetric(t *testing.T) {
	for s1 := 0; s1 <= 6; s1++ {
		for s2 := 0; s2 <= 6; s2++ {
			for c1 := 20; c1 <= 32; c1 += 4 {
				for c2 := 20; c2 <= 32; c2 += 4 {
					a := DetermineWinner(s1, s2, c1, c2)
					b := DetermineWinner(s2, s1, c2, c1)
					if (a == 1) != (b == 2) || (a == 2) != (b == 1) || (a == 0) != (b == 0) {
						t.Fatalf("not antisymmetric at (%d,%d,%d,%d): %d vs %d", s1, s2, c1, c2, a, b)
					}
				}
			}
		}
	}
}
