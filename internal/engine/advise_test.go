package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sueca-ai/internal/shared"
)

func TestAdvise(t *testing.T) {
	advice, err := Advise(Situation{
		Hand:  cards(t, "2S", "5H", "7S"),
		Trick: cards(t, "3S"),
		Trump: shared.Hearts,
	})
	require.NoError(t, err)
	assert.Equal(t, "7S", advice.Card.String())
	assert.Equal(t, FollowSuitWinLow, advice.Reason)
	assert.Equal(t, []string{"2S", "7S"}, shared.CardStrings(advice.Legal))
}

func TestAdviseErrors(t *testing.T) {
	cases := []struct {
		name string
		sit  Situation
		want error
	}{
		{
			name: "empty hand",
			sit:  Situation{Trick: cards(t, "3S"), Trump: shared.Hearts},
			want: ErrNoLegalMoves,
		},
		{
			name: "unknown trump",
			sit:  Situation{Hand: cards(t, "3S"), Trump: "X"},
			want: ErrInvalidTrump,
		},
		{
			name: "missing trump",
			sit:  Situation{Hand: cards(t, "3S")},
			want: ErrInvalidTrump,
		},
		{
			name: "complete trick",
			sit:  Situation{Hand: cards(t, "3S"), Trick: cards(t, "2S", "4S", "5S", "6S"), Trump: shared.Hearts},
			want: ErrTrickComplete,
		},
		{
			name: "card in hand and trick",
			sit:  Situation{Hand: cards(t, "3S"), Trick: cards(t, "3S"), Trump: shared.Hearts},
			want: ErrDuplicateCard,
		},
		{
			name: "card twice in hand",
			sit:  Situation{Hand: cards(t, "3S", "3S"), Trump: shared.Hearts},
			want: ErrDuplicateCard,
		},
		{
			name: "card in hand and history",
			sit: Situation{
				Hand:    cards(t, "AS"),
				Trump:   shared.Hearts,
				History: [][]shared.Card{cards(t, "AS", "2S", "3S", "4S")},
			},
			want: ErrDuplicateCard,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Advise(tc.sit)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateAllowsPlayedOverlap(t *testing.T) {
	sit := Situation{
		Hand:    cards(t, "7S", "KS"),
		Trick:   cards(t, "2S"),
		Trump:   shared.Hearts,
		History: [][]shared.Card{cards(t, "AS", "3S", "4S", "5S")},
		Played:  cards(t, "AS", "3S", "4S", "5S", "2S"),
	}
	require.NoError(t, Validate(sit))
}
