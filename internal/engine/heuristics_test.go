package engine

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sueca-ai/internal/shared"
)

func TestChooseCard(t *testing.T) {
	cases := []struct {
		name    string
		hand    []string
		trick   []string
		trump   shared.Suit
		history [][]string
		want    string
		reason  Reason
	}{
		{"lead avoids the 7", []string{"7S", "5S", "KS"}, nil, shared.Hearts, nil, "KS", LeadHighestNo7},
		{"lead with only 7s", []string{"7S", "7H"}, nil, shared.Hearts, nil, "7S", LeadHighest},
		{"follow wins low", []string{"7S", "5S"}, []string{"2S"}, shared.Hearts, nil, "5S", FollowSuitWinLow},
		{"follow wins with only card", []string{"7S"}, []string{"QS"}, shared.Hearts, nil, "7S", FollowSuitWinLow},
		{"follow keeps 7 under a trump", []string{"7S", "5S"}, []string{"2S", "3H"}, shared.Hearts, nil, "5S", FollowSuitLowAvoid7},
		{"follow forced 7", []string{"7S"}, []string{"QS", "2H"}, shared.Hearts, nil, "7S", FollowSuitLow},
		{"follow low once ace is out", []string{"7S", "KS"}, []string{"2S", "3H"}, shared.Hearts, [][]string{{"AS", "2D", "3D", "4D"}}, "KS", FollowSuitLow},
		{"follow cannot beat ace", []string{"7S", "5S"}, []string{"AS"}, shared.Hearts, nil, "5S", FollowSuitLow},
		{"trump led is not overtaken", []string{"2H", "KH", "7H"}, []string{"3H"}, shared.Hearts, nil, "2H", FollowSuitLowAvoid7},
		{"trump led, trump ace out", []string{"2H", "KH", "7H"}, []string{"3H"}, shared.Hearts, [][]string{{"AH", "2D", "3D", "4D"}}, "2H", FollowSuitLow},
		{"cut avoids the 7", []string{"7H", "2H"}, []string{"2S", "3S"}, shared.Hearts, nil, "2H", CutWithLowTrumpNo7},
		{"cut with only a 7", []string{"7H", "KD"}, []string{"2S"}, shared.Hearts, nil, "7H", CutWithLowTrump},
		{"overtrump avoids the 7", []string{"7H", "QH"}, []string{"2S", "3H"}, shared.Hearts, nil, "QH", OvertrumpLowNo7},
		{"overtrump with only a 7", []string{"7H", "2H"}, []string{"2S", "KH"}, shared.Hearts, nil, "7H", OvertrumpLow},
		{"dump low trump", []string{"3H", "2H"}, []string{"2S", "AH"}, shared.Hearts, nil, "2H", DumpTrumpLowNo7},
		{"dump the 7 when nothing else", []string{"7H"}, []string{"2S", "AH"}, shared.Hearts, nil, "7H", DumpTrumpLow},
		{"discard lowest", []string{"KD", "2C", "7D"}, []string{"2S"}, shared.Hearts, nil, "2C", DiscardLowest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sit := Situation{
				Hand:  cards(t, tc.hand...),
				Trick: cards(t, tc.trick...),
				Trump: tc.trump,
			}
			for _, h := range tc.history {
				sit.History = append(sit.History, cards(t, h...))
			}
			legal := LegalMoves(sit.Hand, sit.Trick, sit.Trump)

			got, reason := ChooseCard(sit, legal)
			assert.Equal(t, tc.want, got.String())
			assert.Equal(t, tc.reason, reason, "got %s", reason)
		})
	}
}

func TestChooseCardAceInPlayedList(t *testing.T) {
	sit := Situation{
		Hand:   cards(t, "7S", "KS"),
		Trick:  cards(t, "2S", "3H"),
		Trump:  shared.Hearts,
		Played: cards(t, "AS"),
	}
	got, reason := ChooseCard(sit, sit.Hand)
	assert.Equal(t, "KS", got.String())
	assert.Equal(t, FollowSuitLow, reason)
}

func TestChooseCardIsIdempotent(t *testing.T) {
	sit := Situation{
		Hand:    cards(t, "7H", "QH", "2C"),
		Trick:   cards(t, "2S", "3H"),
		Trump:   shared.Hearts,
		History: [][]shared.Card{cards(t, "AS", "KS", "QS", "JS")},
	}
	legal := LegalMoves(sit.Hand, sit.Trick, sit.Trump)
	c1, r1 := ChooseCard(sit, legal)
	c2, r2 := ChooseCard(sit, legal)
	assert.Equal(t, c1, c2)
	assert.Equal(t, r1, r2)
	assert.Equal(t, []string{"7H", "QH", "2C"}, shared.CardStrings(sit.Hand))
}

func TestChooseCardAlwaysLegal(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for i := range 1000 {
		deck := shared.NewDeck()
		deck.Shuffle(rng)
		handSize := 1 + rng.IntN(shared.HandSize)
		trickSize := rng.IntN(Seats)
		sit := Situation{
			Hand:  deck.Cards[:handSize],
			Trick: deck.Cards[handSize : handSize+trickSize],
			Trump: shared.Suits[rng.IntN(len(shared.Suits))],
			History: [][]shared.Card{
				deck.Cards[handSize+trickSize : handSize+trickSize+4],
			},
		}
		legal := LegalMoves(sit.Hand, sit.Trick, sit.Trump)
		got, reason := ChooseCard(sit, legal)
		require.True(t, slices.Contains(legal, got), "iteration %d: %s not legal", i, got)
		require.Contains(t, Reasons, reason)
	}
}

func TestAcesSeen(t *testing.T) {
	seen := AcesSeen(
		[][]shared.Card{cards(t, "AS", "2S"), cards(t, "KD")},
		cards(t, "AH"),
		cards(t, "AC"),
	)
	assert.Equal(t, map[shared.Suit]bool{shared.Spades: true, shared.Hearts: true, shared.Clubs: true}, seen)
	assert.Empty(t, AcesSeen(nil, nil, nil))
}

func TestReasonTags(t *testing.T) {
	assert.Len(t, Reasons, 12)
	tags := map[string]bool{}
	for _, r := range Reasons {
		tag := r.String()
		assert.NotContains(t, tags, tag)
		tags[tag] = true

		out, err := json.Marshal(r)
		require.NoError(t, err)
		assert.Equal(t, `"`+tag+`"`, string(out))

		var back Reason
		require.NoError(t, json.Unmarshal(out, &back))
		assert.Equal(t, r, back)
	}
	assert.Equal(t, "cut_with_low_trump_no7", CutWithLowTrumpNo7.String())
	assert.Equal(t, "Reason(0)", Reason(0).String())
	_, err := Reason(0).MarshalText()
	assert.Error(t, err)
	var r Reason
	assert.Error(t, r.UnmarshalText([]byte("play_anything")))
}
