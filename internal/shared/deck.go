package shared

import (
	"fmt"
	"math/rand/v2"
)

const (
	// DeckSize is the number of cards in a Sueca deck.
	DeckSize = 40
	// HandSize is the number of cards dealt to each of the four players.
	HandSize = 10
)

// Deck represents a collection of cards.
type Deck struct {
	Cards []Card
}

// NewDeck creates a standard 40-card Sueca deck in suit then rank order.
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return &Deck{Cards: cards}
}

// Shuffle randomizes the order of cards in the deck.
func (d *Deck) Shuffle(rng *rand.Rand) {
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// Cut moves the first point cards to the bottom of the deck. Points outside
// 1..len-1 are clamped.
func (d *Deck) Cut(point int) {
	if len(d.Cards) <= 1 {
		return
	}
	point = max(1, min(point, len(d.Cards)-1))
	cut := make([]Card, 0, len(d.Cards))
	cut = append(cut, d.Cards[point:]...)
	cut = append(cut, d.Cards[:point]...)
	d.Cards = cut
}

// Deal distributes cardsPerPlayer consecutive cards to each player in order
// and empties the dealt cards from the deck.
func (d *Deck) Deal(numPlayers, cardsPerPlayer int) ([][]Card, error) {
	needed := numPlayers * cardsPerPlayer
	if len(d.Cards) < needed {
		return nil, fmt.Errorf("not enough cards in deck (%d) to deal %d cards to %d players", len(d.Cards), cardsPerPlayer, numPlayers)
	}

	dealt := make([][]Card, numPlayers)
	for i := range numPlayers {
		start := i * cardsPerPlayer
		hand := make([]Card, cardsPerPlayer)
		copy(hand, d.Cards[start:start+cardsPerPlayer])
		dealt[i] = hand
	}
	d.Cards = d.Cards[needed:]
	return dealt, nil
}
