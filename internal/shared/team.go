package shared

import "github.com/google/uuid"

// Team represents one of the two partnerships at the table.
type Team struct {
	ID         string     `json:"id"`
	Players    [2]*Player `json:"-"`
	Points     int        `json:"points"`    // card points in the current round
	Victories  int        `json:"victories"` // round victories in the game
	TeamNumber int        `json:"team_number"`
}

// NewTeam creates a new team with the given logical number and players.
// It generates a unique UUID for the team ID.
func NewTeam(teamNumber int, player1, player2 *Player) *Team {
	return &Team{
		ID:         uuid.NewString(),
		Players:    [2]*Player{player1, player2},
		TeamNumber: teamNumber,
	}
}

// AddPoints adds trick points to the team's round total.
func (t *Team) AddPoints(points int) {
	t.Points += points
}

// ResetPoints clears the round total.
func (t *Team) ResetPoints() {
	t.Points = 0
}

// RoundVictories converts a round total into victories: 61-90 is one, 91-119
// is two, all 120 points is four. Anything else, 60-60 included, is none.
func RoundVictories(points int) int {
	switch {
	case points == DeckPoints:
		return 4
	case points >= 91:
		return 2
	case points >= 61:
		return 1
	}
	return 0
}

// DeckPoints is the total point value of a Sueca deck.
const DeckPoints = 120
