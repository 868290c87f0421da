package protocol

import (
	"encoding/json"

	"sueca-ai/internal/engine"
	"sueca-ai/internal/shared"
)

// Message represents a generic WebSocket message structure.
type Message struct {
	Type    string          `json:"type"`              // Type of the message (e.g., "join_game", "play_card")
	Payload json.RawMessage `json:"payload,omitempty"` // Raw JSON payload, allows flexible structures
}

// Message types exchanged over the table WebSocket.
const (
	TypeCreateGame  = "create_game"
	TypeJoinGame    = "join_game"
	TypePlayCard    = "play_card"
	TypeHint        = "hint"
	TypePing        = "ping"
	TypePong        = "pong"
	TypeGameCreated = "game_created"
	TypeLobbyUpdate = "lobby_update"
	TypeJoinError   = "join_error"
	TypeGameStart   = "game_start"
	TypeDealHand    = "deal_hand"
	TypeYourTurn    = "your_turn"
	TypeCardPlayed  = "card_played"
	TypeGameState   = "game_state_update"
	TypeTrickEnd    = "trick_end"
	TypeRoundEnd    = "round_end"
	TypeGameOver    = "game_over"
	TypePlayerLeft  = "player_left"
	TypeError       = "error"
)

// --- HTTP bodies ---

// PlayRequest is the body of POST /play and POST /legal.
type PlayRequest struct {
	Hand    []shared.Card   `json:"hand"`
	Trick   []shared.Card   `json:"trick"`
	Trump   shared.Suit     `json:"trump"`
	Played  []shared.Card   `json:"played,omitempty"`
	History [][]shared.Card `json:"history,omitempty"`
	Config  map[string]any  `json:"config,omitempty"` // accepted for compatibility, unused
}

// Situation converts the request into the policy's input.
func (r PlayRequest) Situation() engine.Situation {
	return engine.Situation{
		Hand:    r.Hand,
		Trick:   r.Trick,
		Trump:   r.Trump,
		History: r.History,
		Played:  r.Played,
	}
}

type PlayResponse struct {
	Play   shared.Card   `json:"play"`
	Reason engine.Reason `json:"reason"`
}

type LegalResponse struct {
	Legal []shared.Card `json:"legal"`
}

// ErrorResponse mirrors the {"detail": ...} shape browser clients expect.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// --- Client -> Server Payload Structs ---

type CreateGamePayload struct {
	Name            string `json:"name"`
	WithBots        bool   `json:"with_bots"`
	TargetVictories int    `json:"target_victories"`
}

type JoinGamePayload struct {
	Name     string `json:"name"`
	GameCode string `json:"game_code"`
}

type PlayCardPayload struct {
	Card shared.Card `json:"card"`
}

// --- Server -> Client Payload Structs ---

type GameCreatedPayload struct {
	GameCode string `json:"game_code"`
}

type LobbyUpdatePayload struct {
	Players []PlayerInfo `json:"players"`
}

type JoinErrorPayload struct {
	Message string `json:"message"`
}

type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Seat int    `json:"seat"`
	Bot  bool   `json:"bot,omitempty"`
}

type TeamInfo struct {
	ID         string       `json:"id"`
	Players    []PlayerInfo `json:"players"`
	Victories  int          `json:"victories"`
	TeamNumber int          `json:"team_number"`
}

type GameStartPayload struct {
	GameID          string       `json:"game_id"`
	Players         []PlayerInfo `json:"players"`
	Teams           []TeamInfo   `json:"teams"`
	TargetVictories int          `json:"target_victories"`
}

type DealHandPayload struct {
	Hand       []shared.Card `json:"hand"`
	Trump      shared.Suit   `json:"trump"`
	TrumpCard  shared.Card   `json:"trump_card"`
	DealerSeat int           `json:"dealer_seat"`
	Round      int           `json:"round"`
}

type YourTurnPayload struct {
	PlayerID   string        `json:"player_id"`
	ValidMoves []shared.Card `json:"valid_moves,omitempty"`
}

type CardPlayedPayload struct {
	PlayerID string        `json:"player_id"`
	Seat     int           `json:"seat"`
	Card     shared.Card   `json:"card"`
	Reason   engine.Reason `json:"reason,omitempty"` // set for bot plays
}

type HintPayload struct {
	Card   shared.Card   `json:"card"`
	Reason engine.Reason `json:"reason"`
}

type GameStatePayload struct {
	CurrentPlayerID string        `json:"current_player_id"`
	CardsOnTable    []shared.Card `json:"cards_on_table"`
	Trump           shared.Suit   `json:"trump"`
	Team1Points     int           `json:"team1_points"`
	Team2Points     int           `json:"team2_points"`
	GameState       string        `json:"game_state"`
}

type TrickEndPayload struct {
	WinnerID   string        `json:"winner_id"`
	WinnerSeat int           `json:"winner_seat"`
	Cards      []shared.Card `json:"cards"`
	Points     int           `json:"points"`
}

type RoundEndPayload struct {
	Round          int `json:"round"`
	Team1Points    int `json:"team1_points"`
	Team2Points    int `json:"team2_points"`
	Team1Victories int `json:"team1_victories"`
	Team2Victories int `json:"team2_victories"`
}

type GameOverPayload struct {
	WinningTeamID  string `json:"winning_team_id"`
	WinningTeam    int    `json:"winning_team"`
	Team1Victories int    `json:"team1_victories"`
	Team2Victories int    `json:"team2_victories"`
	Forfeit        bool   `json:"forfeit,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

// NewMessage marshals payload into a typed envelope. A nil payload is omitted.
func NewMessage(msgType string, payload any) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = payloadBytes
	}
	return json.Marshal(msg)
}
