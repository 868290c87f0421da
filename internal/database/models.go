package database

// GameResult is one finished table game.
type GameResult struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"created_at"`
	Player1        string `json:"player1"`
	Player2        string `json:"player2"`
	Player3        string `json:"player3"`
	Player4        string `json:"player4"`
	Team1Victories int    `json:"team1_victories"`
	Team2Victories int    `json:"team2_victories"`
	WinningTeam    int    `json:"winning_team"`
	Rounds         int    `json:"rounds"`
	Forfeit        bool   `json:"forfeit"`
}
