package shared

// PlayedCard stores a card along with the seat of the player who played it.
type PlayedCard struct {
	Card Card
	Seat int
}

// Trick represents a single trick at the table.
type Trick struct {
	Cards      []PlayedCard // Cards in play order, with seats
	WinnerSeat int          // Seat that won the trick (-1 until determined)
}

// NewTrick creates a new trick instance.
func NewTrick() *Trick {
	return &Trick{
		Cards:      []PlayedCard{},
		WinnerSeat: -1,
	}
}

// AddCard adds a card and the player's seat to the trick.
func (t *Trick) AddCard(card Card, seat int) {
	t.Cards = append(t.Cards, PlayedCard{Card: card, Seat: seat})
}

// LedSuit returns the suit of the lead card, or "" for an empty trick.
func (t *Trick) LedSuit() Suit {
	if len(t.Cards) == 0 {
		return ""
	}
	return t.Cards[0].Card.Suit
}

// Plain returns the trick's cards in play order without seats.
func (t *Trick) Plain() []Card {
	cards := make([]Card, len(t.Cards))
	for i, pc := range t.Cards {
		cards[i] = pc.Card
	}
	return cards
}

// Points sums the Sueca point values of the cards in the trick.
func (t *Trick) Points() int {
	return CardPoints(t.Plain())
}

// DetermineWinner records and returns the seat holding the winning card.
// Returns -1 for an empty trick.
func (t *Trick) DetermineWinner(trump Suit) int {
	_, idx, ok := WinningCard(t.Plain(), trump)
	if !ok {
		return -1
	}
	t.WinnerSeat = t.Cards[idx].Seat
	return t.WinnerSeat
}

// WinningCard scans the cards in play order and returns the card currently
// winning and its index. A trump beats any non-trump, higher trump beats
// lower trump, and among non-trumps only the led suit contests. ok is false
// for an empty trick.
func WinningCard(cards []Card, trump Suit) (winner Card, idx int, ok bool) {
	if len(cards) == 0 {
		return Card{}, -1, false
	}
	led := cards[0].Suit
	winner = cards[0]
	for i, c := range cards[1:] {
		switch {
		case c.IsTrump(trump) && !winner.IsTrump(trump):
			winner, idx = c, i+1
		case c.IsTrump(trump) && winner.IsTrump(trump):
			if c.Rank.Beats(winner.Rank) {
				winner, idx = c, i+1
			}
		case !winner.IsTrump(trump) && c.Suit == led:
			if c.Rank.Beats(winner.Rank) {
				winner, idx = c, i+1
			}
		}
	}
	return winner, idx, true
}

// CardPoints sums the point values of cards.
func CardPoints(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Points()
	}
	return total
}
