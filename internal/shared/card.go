package shared

import (
	"errors"
	"fmt"
)

// ErrMalformedCard is returned when a card code cannot be parsed.
var ErrMalformedCard = errors.New("malformed card code")

// Suit represents the suit of a card, encoded by its single-letter code.
type Suit string

const (
	Clubs    Suit = "C"
	Diamonds Suit = "D"
	Hearts   Suit = "H"
	Spades   Suit = "S"
)

// Suits lists the four suits in deck order.
var Suits = [4]Suit{Clubs, Diamonds, Hearts, Spades}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case Clubs, Diamonds, Hearts, Spades:
		return true
	}
	return false
}

// Rank represents a card rank. The numeric order of the constants is the
// Sueca strength order, weakest first.
type Rank int

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Queen
	Jack
	King
	Seven
	Ace
)

// Ranks lists every rank from weakest to strongest.
var Ranks = [10]Rank{Two, Three, Four, Five, Six, Queen, Jack, King, Seven, Ace}

var rankSymbols = [10]string{"2", "3", "4", "5", "6", "Q", "J", "K", "7", "A"}

// Sueca point values, 120 in a full deck.
var rankPoints = [10]int{0, 0, 0, 0, 0, 2, 3, 4, 10, 11}

var ranksBySymbol = func() map[string]Rank {
	m := make(map[string]Rank, len(rankSymbols))
	for r, sym := range rankSymbols {
		m[sym] = Rank(r)
	}
	return m
}()

func (r Rank) String() string {
	if r < Two || r > Ace {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankSymbols[r]
}

// Beats reports whether r is stronger than other.
func (r Rank) Beats(other Rank) bool { return r > other }

// Card represents a single card of the 40-card Sueca deck.
type Card struct {
	Rank Rank
	Suit Suit
}

// ParseCard splits a card code into rank and suit: the last character is the
// suit and everything before it is the rank.
func ParseCard(code string) (Card, error) {
	if len(code) < 2 {
		return Card{}, fmt.Errorf("%w: %q is too short", ErrMalformedCard, code)
	}
	suit := Suit(code[len(code)-1:])
	if !suit.Valid() {
		return Card{}, fmt.Errorf("%w: %q has unknown suit %q", ErrMalformedCard, code, suit)
	}
	rank, ok := ranksBySymbol[code[:len(code)-1]]
	if !ok {
		return Card{}, fmt.Errorf("%w: %q has unknown rank %q", ErrMalformedCard, code, code[:len(code)-1])
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MustParseCard is like ParseCard but panics on error. Intended for literals.
func MustParseCard(code string) Card {
	c, err := ParseCard(code)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCards parses every code, stopping at the first malformed one.
func ParseCards(codes []string) ([]Card, error) {
	cards := make([]Card, 0, len(codes))
	for _, code := range codes {
		c, err := ParseCard(code)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// String formats the card as rank followed by suit, e.g. "7S".
func (c Card) String() string {
	return c.Rank.String() + string(c.Suit)
}

// Points returns the card's Sueca point value.
func (c Card) Points() int {
	if c.Rank < Two || c.Rank > Ace {
		return 0
	}
	return rankPoints[c.Rank]
}

// IsTrump reports whether the card belongs to the trump suit.
func (c Card) IsTrump(trump Suit) bool { return c.Suit == trump }

func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CardStrings formats a slice of cards as codes.
func CardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
