package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCard(t *testing.T) {
	cases := []struct {
		code string
		want Card
	}{
		{"7S", Card{Rank: Seven, Suit: Spades}},
		{"AH", Card{Rank: Ace, Suit: Hearts}},
		{"QD", Card{Rank: Queen, Suit: Diamonds}},
		{"2C", Card{Rank: Two, Suit: Clubs}},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			got, err := ParseCard(tc.code)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.code, got.String())
		})
	}
}

func TestParseCardMalformed(t *testing.T) {
	for _, code := range []string{"", "S", "7X", "10S", "8H", "as", "7s"} {
		t.Run(code, func(t *testing.T) {
			_, err := ParseCard(code)
			assert.ErrorIs(t, err, ErrMalformedCard)
		})
	}
}

func TestRankOrderIsSuecaOrder(t *testing.T) {
	order := []string{"2", "3", "4", "5", "6", "Q", "J", "K", "7", "A"}
	for i := 1; i < len(order); i++ {
		weaker := MustParseCard(order[i-1] + "S")
		stronger := MustParseCard(order[i] + "S")
		assert.True(t, stronger.Rank.Beats(weaker.Rank), "%s should beat %s", stronger, weaker)
		assert.False(t, weaker.Rank.Beats(stronger.Rank), "%s should not beat %s", weaker, stronger)
	}
}

func TestDeckPointsTotal(t *testing.T) {
	total := 0
	for _, c := range NewDeck().Cards {
		total += c.Points()
	}
	assert.Equal(t, DeckPoints, total)
	assert.Equal(t, 11, MustParseCard("AC").Points())
	assert.Equal(t, 10, MustParseCard("7C").Points())
	assert.Equal(t, 0, MustParseCard("6C").Points())
}

func TestCardJSON(t *testing.T) {
	var payload struct {
		Hand []Card `json:"hand"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"hand":["AS","KD","5C"]}`), &payload))
	assert.Equal(t, []Card{MustParseCard("AS"), MustParseCard("KD"), MustParseCard("5C")}, payload.Hand)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hand":["AS","KD","5C"]}`, string(out))

	err = json.Unmarshal([]byte(`{"hand":["ZZ"]}`), &payload)
	assert.ErrorIs(t, err, ErrMalformedCard)
}

func TestParseCards(t *testing.T) {
	cards, err := ParseCards([]string{"7S", "5S"})
	require.NoError(t, err)
	assert.Equal(t, []string{"7S", "5S"}, CardStrings(cards))

	_, err = ParseCards([]string{"7S", "X"})
	assert.ErrorIs(t, err, ErrMalformedCard)
}
