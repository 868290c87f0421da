package shared

// Player represents a seat at a Sueca table.
type Player struct {
	ID   string // Unique identifier for the player
	Name string // Player's chosen name
	Bot  bool   // Seat is played by the engine
	Hand []Card // Cards currently held by the player
}

// NewPlayer creates a new human player with the given ID and name.
func NewPlayer(id string, name string) *Player {
	return &Player{
		ID:   id,
		Name: name,
		Hand: []Card{},
	}
}

// NewBot creates a new engine-driven player.
func NewBot(id string, name string) *Player {
	p := NewPlayer(id, name)
	p.Bot = true
	return p
}

// RemoveCard removes a card from the player's hand.
func (p *Player) RemoveCard(card Card) bool {
	for i, c := range p.Hand {
		if c == card {
			p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// HasCard reports whether the card is in the player's hand.
func (p *Player) HasCard(card Card) bool {
	for _, c := range p.Hand {
		if c == card {
			return true
		}
	}
	return false
}

func (p *Player) HasSuit(suit Suit) bool {
	for _, card := range p.Hand {
		if card.Suit == suit {
			return true
		}
	}
	return false
}
