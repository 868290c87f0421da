package engine

import "sueca-ai/internal/shared"

// LegalMoves returns the cards of hand that may be played on trick. The
// leader may play anything; a follower must play the led suit when holding
// it and may play anything otherwise. Trump does not restrict legality.
func LegalMoves(hand, trick []shared.Card, trump shared.Suit) []shared.Card {
	if len(hand) == 0 {
		return []shared.Card{}
	}
	if len(trick) == 0 {
		return clone(hand)
	}

	led := trick[0].Suit
	if sameSuit := filter(hand, ofSuit(led)); len(sameSuit) > 0 {
		return sameSuit
	}
	return clone(hand)
}

// IsLegal reports whether card is among the legal moves.
func IsLegal(card shared.Card, hand, trick []shared.Card, trump shared.Suit) bool {
	for _, c := range LegalMoves(hand, trick, trump) {
		if c == card {
			return true
		}
	}
	return false
}

func clone(cards []shared.Card) []shared.Card {
	return append([]shared.Card(nil), cards...)
}

func filter(cards []shared.Card, keep func(shared.Card) bool) []shared.Card {
	var out []shared.Card
	for _, c := range cards {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func ofSuit(s shared.Suit) func(shared.Card) bool {
	return func(c shared.Card) bool { return c.Suit == s }
}
