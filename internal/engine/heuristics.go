package engine

import (
	"cmp"
	"slices"

	"sueca-ai/internal/shared"
)

// Situation is everything the policy may look at when choosing a card.
type Situation struct {
	Hand    []shared.Card   // cards held by the player to move
	Trick   []shared.Card   // current trick in play order, lead first
	Trump   shared.Suit     // trump suit of the deal
	History [][]shared.Card // completed tricks, each in play order
	Played  []shared.Card   // further cards known to be out
}

// ChooseCard picks one card from legal and names the rule that picked it.
// legal must be non-empty. The rules are tried in order and the first one
// that applies decides:
//
//   - leading: highest card that is not a 7
//   - following suit: win as cheaply as possible, otherwise play low and
//     keep the 7 while that suit's Ace is still out
//   - void with trumps: cut, overtrump or dump with the lowest trump that
//     does the job, sparing the trump 7
//   - otherwise: discard the lowest card
func ChooseCard(sit Situation, legal []shared.Card) (shared.Card, Reason) {
	if len(sit.Trick) == 0 {
		return chooseLead(legal)
	}

	led := sit.Trick[0].Suit
	winning, _, _ := shared.WinningCard(sit.Trick, sit.Trump)

	if sameSuit := filter(legal, ofSuit(led)); len(sameSuit) > 0 {
		return chooseFollow(sameSuit, winning, led, sit.Trump, AcesSeen(sit.History, sit.Trick, sit.Played))
	}
	if trumps := filter(legal, ofSuit(sit.Trump)); len(trumps) > 0 {
		return chooseTrump(trumps, winning, sit.Trump)
	}

	others := filter(legal, func(c shared.Card) bool { return c.Suit != led && c.Suit != sit.Trump })
	if len(others) == 0 {
		others = legal
	}
	return slices.MinFunc(others, byRank), DiscardLowest
}

func chooseLead(legal []shared.Card) (shared.Card, Reason) {
	if non7 := filter(legal, notSeven); len(non7) > 0 {
		return slices.MaxFunc(non7, byRank), LeadHighestNo7
	}
	return slices.MaxFunc(legal, byRank), LeadHighest
}

func chooseFollow(sameSuit []shared.Card, winning shared.Card, led, trump shared.Suit, aces map[shared.Suit]bool) (shared.Card, Reason) {
	candidates := sortedByRank(sameSuit)

	if winning.Suit == led && winning.Suit != trump {
		if beats := filter(candidates, outranks(winning)); len(beats) > 0 {
			return beats[0], FollowSuitWinLow
		}
	}
	if !aces[led] {
		if non7 := filter(candidates, notSeven); len(non7) > 0 {
			return non7[0], FollowSuitLowAvoid7
		}
	}
	return candidates[0], FollowSuitLow
}

func chooseTrump(trumps []shared.Card, winning shared.Card, trump shared.Suit) (shared.Card, Reason) {
	candidates := sortedByRank(trumps)

	if !winning.IsTrump(trump) {
		if non7 := filter(candidates, notSeven); len(non7) > 0 {
			return non7[0], CutWithLowTrumpNo7
		}
		return candidates[0], CutWithLowTrump
	}

	if beats := filter(candidates, outranks(winning)); len(beats) > 0 {
		if non7 := filter(beats, notSeven); len(non7) > 0 {
			return non7[0], OvertrumpLowNo7
		}
		return beats[0], OvertrumpLow
	}

	if non7 := filter(candidates, notSeven); len(non7) > 0 {
		return non7[0], DumpTrumpLowNo7
	}
	return candidates[0], DumpTrumpLow
}

// AcesSeen returns the suits whose Ace appears in history, played or the
// current trick.
func AcesSeen(history [][]shared.Card, trick, played []shared.Card) map[shared.Suit]bool {
	seen := make(map[shared.Suit]bool, len(shared.Suits))
	mark := func(cards []shared.Card) {
		for _, c := range cards {
			if c.Rank == shared.Ace {
				seen[c.Suit] = true
			}
		}
	}
	for _, t := range history {
		mark(t)
	}
	mark(played)
	mark(trick)
	return seen
}

func byRank(a, b shared.Card) int { return cmp.Compare(a.Rank, b.Rank) }

func sortedByRank(cards []shared.Card) []shared.Card {
	sorted := clone(cards)
	slices.SortStableFunc(sorted, byRank)
	return sorted
}

func notSeven(c shared.Card) bool { return c.Rank != shared.Seven }

func outranks(winning shared.Card) func(shared.Card) bool {
	return func(c shared.Card) bool { return c.Rank.Beats(winning.Rank) }
}
