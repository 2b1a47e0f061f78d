package domain

import "testing"

func card(id, rank string, suit Suit) Card {
	return Card{ID: id, Suit: suit, Rank: rank, Value: rankValues[rank]}
}

func TestCardValues(t *testing.T) {
	ace := card("a", "A", SuitSpades)
	vals := ace.Values()
	if len(vals) != 2 || vals[0] != 1 || vals[1] != 14 {
		t.Fatalf("ace values = %v; want [1 14]", vals)
	}

	king := card("k", "K", SuitHearts)
	if vals := king.Values(); len(vals) != 1 || vals[0] != 13 {
		t.Fatalf("king values = %v; want [13]", vals)
	}

	if !ace.CanCountAs(14) || !ace.CanCountAs(1) || ace.CanCountAs(7) {
		t.Fatalf("ace CanCountAs wrong")
	}
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != 52 {
		t.Fatalf("deck size = %d; want 52", len(deck))
	}

	seen := make(map[string]bool)
	for _, c := range deck {
		if seen[c.ID] {
			t.Fatalf("duplicate card id %s", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestCanMakeValueWithAces(t *testing.T) {
	cases := []struct {
		name   string
		cards  []Card
		target int
		want   bool
	}{
		{"plain sum", []Card{card("1", "5", SuitHearts), card("2", "3", SuitClubs)}, 8, true},
		{"plain mismatch", []Card{card("1", "5", SuitHearts), card("2", "3", SuitClubs)}, 9, false},
		{"ace low", []Card{card("1", "A", SuitHearts), card("2", "6", SuitClubs)}, 7, true},
		{"ace high", []Card{card("1", "A", SuitHearts)}, 14, true},
		{"ace either way", []Card{card("1", "A", SuitHearts), card("2", "A", SuitClubs)}, 15, true},
		{"two aces low", []Card{card("1", "A", SuitHearts), card("2", "A", SuitClubs)}, 2, true},
		{"unreachable", []Card{card("1", "A", SuitHearts), card("2", "6", SuitClubs)}, 9, false},
	}

	for _, tc := range cases {
		assign, ok := CanMakeValueWithAces(tc.cards, tc.target)
		if ok != tc.want {
			t.Fatalf("%s: CanMakeValueWithAces = %v; want %v", tc.name, ok, tc.want)
		}
		if ok {
			sum := 0
			for _, c := range tc.cards {
				if c.IsAce() {
					sum += assign[c.ID]
				} else {
					sum += c.Value
				}
			}
			if sum != tc.target {
				t.Fatalf("%s: assignment sums to %d; want %d", tc.name, sum, tc.target)
			}
		}
	}
}
