package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sueca-ai/internal/shared"
)

func cards(t *testing.T, codes ...string) []shared.Card {
	t.Helper()
	cs, err := shared.ParseCards(codes)
	require.NoError(t, err)
	return cs
}

func TestLegalMoves(t *testing.T) {
	cases := []struct {
		name  string
		hand  []string
		trick []string
		trump shared.Suit
		want  []string
	}{
		{"must follow suit", []string{"2S", "5H", "7S"}, []string{"3S"}, shared.Hearts, []string{"2S", "7S"}},
		{"void plays anything", []string{"2H", "5H", "7H"}, []string{"3S"}, shared.Diamonds, []string{"2H", "5H", "7H"}},
		{"leader plays anything", []string{"2H", "AS"}, nil, shared.Diamonds, []string{"2H", "AS"}},
		{"trump lead must be followed", []string{"2H", "AS"}, []string{"QH", "KS"}, shared.Hearts, []string{"2H"}},
		{"empty hand", nil, []string{"3S"}, shared.Hearts, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LegalMoves(cards(t, tc.hand...), cards(t, tc.trick...), tc.trump)
			assert.Equal(t, tc.want, shared.CardStrings(got))
		})
	}
}

func TestLegalMovesProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 500 {
		deck := shared.NewDeck()
		deck.Shuffle(rng)
		handSize := 1 + rng.IntN(shared.HandSize)
		trickSize := rng.IntN(Seats)
		hand := deck.Cards[:handSize]
		trick := deck.Cards[handSize : handSize+trickSize]
		trump := shared.Suits[rng.IntN(len(shared.Suits))]

		legal := LegalMoves(hand, trick, trump)
		require.NotEmpty(t, legal, "iteration %d", i)
		if len(trick) == 0 {
			assert.Equal(t, hand, legal)
			continue
		}

		led := trick[0].Suit
		var sameSuit []shared.Card
		for _, c := range hand {
			if c.Suit == led {
				sameSuit = append(sameSuit, c)
			}
		}
		if len(sameSuit) > 0 {
			assert.Equal(t, sameSuit, legal, "iteration %d", i)
		} else {
			assert.Equal(t, hand, legal, "iteration %d", i)
		}
	}
}

func TestLegalMovesDoesNotAliasHand(t *testing.T) {
	hand := cards(t, "2H", "AS")
	legal := LegalMoves(hand, nil, shared.Hearts)
	legal[0] = shared.MustParseCard("3C")
	assert.Equal(t, "2H", hand[0].String())
}

func TestIsLegal(t *testing.T) {
	hand := cards(t, "2S", "5H")
	trick := cards(t, "3S")
	assert.True(t, IsLegal(shared.MustParseCard("2S"), hand, trick, shared.Hearts))
	assert.False(t, IsLegal(shared.MustParseCard("5H"), hand, trick, shared.Hearts))
	assert.False(t, IsLegal(shared.MustParseCard("AC"), hand, trick, shared.Hearts))
}
