package game

import "casino_server/internal/domain"

// CalculateScore scores one captured pile: 1 point per Ace, 1 point for the
// 2 of spades, 2 points for the 10 of diamonds. Order of the pile does not
// matter.
func CalculateScore(captured []domain.Card) int {
	score := 0
	for _, c := range captured {
		switch {
		case c.IsAce():
			score++
		case c.Rank == "2" && c.Suit == domain.SuitSpades:
			score++
		case c.Rank == "10" && c.Suit == domain.SuitDiamonds:
			score += 2
		}
	}
	return score
}

// CalculateBonusScores awards +1 to the side with strictly more captured
// cards and +2 to the side with strictly more spades; ties award nothing.
func CalculateBonusScores(p1, p2 []domain.Card) (int, int) {
	var b1, b2 int

	if len(p1) > len(p2) {
		b1++
	} else if len(p2) > len(p1) {
		b2++
	}

	s1, s2 := countSpades(p1), countSpades(p2)
	if s1 > s2 {
		b1 += 2
	} else if s2 > s1 {
		b2 += 2
	}

	return b1, b2
}

func countSpades(cards []domain.Card) int {
	n := 0
	for _, c := range cards {
		if c.Suit == domain.SuitSpades {
			n++
		}
	}
	return n
}

// DetermineWinner returns 1 or 2 for the winning side, 0 for a draw. Higher
// total score wins; on a score tie the higher card count wins; both tied is
// a draw. Never guesses from partial information.
func DetermineWinner(p1Total, p2Total, p1Cards, p2Cards int) int {
	if p1Total != p2Total {
		if p1Total > p2Total {
			return 1
		}
		return 2
	}
	if p1Cards != p2Cards {
		if p1Cards > p2Cards {
			return 1
		}
		return 2
	}
	return 0
}
