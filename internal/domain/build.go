package domain

// BuildComponent is one additive stack inside a build. Its cards sum to
// SumValue once each Ace is replaced by its chosen value from AceValuesUsed.
type BuildComponent struct {
	Cards         []Card         `json:"cards"`
	SumValue      int            `json:"sum_value"`
	AceValuesUsed map[string]int `json:"ace_values_used,omitempty"`
}

// Build is a table-resident aggregate of cards declared to sum to Value,
// capturable only by a card that can count as Value. It persists across
// turns until captured.
type Build struct {
	ID    string `json:"id"`
	Cards []Card `json:"cards"`
	Value int    `json:"value"`
	Owner int    `json:"owner"` // player number 1 or 2
}

// ContainsCard reports whether the build holds the card with the given id.
func (b Build) ContainsCard(cardID string) bool {
	for _, c := range b.Cards {
		if c.ID == cardID {
			return true
		}
	}
	return false
}
