package engine

import (
	"errors"
	"fmt"

	"sueca-ai/internal/shared"
)

var (
	// ErrNoLegalMoves is returned when the hand offers nothing to play.
	ErrNoLegalMoves = errors.New("no legal moves available")
	// ErrInvalidTrump is returned for a trump that is not C, D, H or S.
	ErrInvalidTrump = errors.New("invalid trump suit")
	// ErrTrickComplete is returned when the trick already holds a card from every seat.
	ErrTrickComplete = errors.New("trick already complete")
	// ErrDuplicateCard is returned when a card is in more than one place at once.
	ErrDuplicateCard = errors.New("duplicate card")
)

// Seats is the number of players at a Sueca table.
const Seats = 4

// Advice is the outcome of the full decision pipeline.
type Advice struct {
	Card   shared.Card
	Reason Reason
	Legal  []shared.Card
}

// Validate checks that a situation is internally consistent. Played cards
// are a merge source for ace tracking and may repeat cards found elsewhere.
func Validate(sit Situation) error {
	if !sit.Trump.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTrump, sit.Trump)
	}
	if len(sit.Trick) >= Seats {
		return fmt.Errorf("%w: %d cards played", ErrTrickComplete, len(sit.Trick))
	}

	seen := make(map[shared.Card]string, len(sit.Hand)+len(sit.Trick))
	check := func(where string, cards []shared.Card) error {
		for _, c := range cards {
			if prev, dup := seen[c]; dup {
				return fmt.Errorf("%w: %s in %s and %s", ErrDuplicateCard, c, prev, where)
			}
			seen[c] = where
		}
		return nil
	}
	if err := check("hand", sit.Hand); err != nil {
		return err
	}
	if err := check("trick", sit.Trick); err != nil {
		return err
	}
	for i, t := range sit.History {
		if err := check(fmt.Sprintf("history[%d]", i), t); err != nil {
			return err
		}
	}
	return nil
}

// Advise validates the situation, computes the legal moves and lets the
// policy choose among them.
func Advise(sit Situation) (Advice, error) {
	if err := Validate(sit); err != nil {
		return Advice{}, err
	}
	legal := LegalMoves(sit.Hand, sit.Trick, sit.Trump)
	if len(legal) == 0 {
		return Advice{}, ErrNoLegalMoves
	}
	card, reason := ChooseCard(sit, legal)
	return Advice{Card: card, Reason: reason, Legal: legal}, nil
}
