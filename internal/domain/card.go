package domain

import (
	"github.com/google/uuid"
)

// Suit - card suit
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

const (
	// AceLow and AceHigh are the two values an Ace may count as.
	AceLow  = 1
	AceHigh = 14
)

// Card is an immutable card. Value is the base numeric value: 1 for an Ace
// (which may also count as 14), 11/12/13 for J/Q/K, rank value otherwise.
type Card struct {
	ID    string `db:"id" json:"id"`
	Suit  Suit   `db:"suit" json:"suit"`
	Rank  string `db:"rank" json:"rank"`
	Value int    `db:"value" json:"value"`
}

var rankValues = map[string]int{
	"A": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7,
	"8": 8, "9": 9, "10": 10, "J": 11, "Q": 12, "K": 13,
}

var ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

func (c Card) IsAce() bool {
	return c.Rank == "A"
}

// Values returns the set of values the card can count as: both Ace values
// for an Ace, the single base value otherwise.
func (c Card) Values() []int {
	if c.IsAce() {
		return []int{AceLow, AceHigh}
	}
	return []int{c.Value}
}

// CanCountAs reports whether the card can be played as value v.
func (c Card) CanCountAs(v int) bool {
	for _, cv := range c.Values() {
		if cv == v {
			return true
		}
	}
	return false
}

func (c Card) String() string {
	return c.Rank + " of " + string(c.Suit)
}

// NewDeck builds an ordered 52-card deck with fresh unique ids.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for _, r := range ranks {
			deck = append(deck, Card{
				ID:    uuid.NewString(),
				Suit:  s,
				Rank:  r,
				Value: rankValues[r],
			})
		}
	}
	return deck
}

// CanMakeValueWithAces reports whether some assignment of each Ace in cards
// to 1 or 14 makes the card values sum to target. On success the returned
// map holds the chosen value per Ace card id. At most four Aces can be
// present, so exhaustive enumeration is exact and cheap.
func CanMakeValueWithAces(cards []Card, target int) (map[string]int, bool) {
	base := 0
	var aces []Card
	for _, c := range cards {
		if c.IsAce() {
			aces = append(aces, c)
		} else {
			base += c.Value
		}
	}

	n := len(aces)
	for mask := 0; mask < 1<<n; mask++ {
		sum := base
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				sum += AceHigh
			} else {
				sum += AceLow
			}
		}
		if sum == target {
			assign := make(map[string]int, n)
			for i, a := range aces {
				if mask&(1<<i) != 0 {
					assign[a.ID] = AceHigh
				} else {
					assign[a.ID] = AceLow
				}
			}
			return assign, true
		}
	}
	return nil, false
}
