package game

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sueca-ai/internal/database"
	"sueca-ai/internal/engine"
	"sueca-ai/internal/protocol"
	"sueca-ai/internal/shared"
)

// GameState represents the current state of the game.
type GameState string

const (
	Dealing   GameState = "Dealing"   // Cards are being dealt
	Playing   GameState = "Playing"   // Players are playing tricks
	RoundOver GameState = "RoundOver" // All ten tricks of a round are played
	GameOver  GameState = "GameOver"  // Target victories reached or a player left
)

var (
	errNotInHand   = errors.New("card not in your hand")
	errIllegalCard = errors.New("you must follow the led suit")
)

// MessageSender defines the function signature for sending messages back to clients.
// The Hub will provide an implementation of this.
type MessageSender func(clientID string, message []byte)

// ResultRecorder stores finished games.
type ResultRecorder interface {
	Insert(ctx context.Context, result database.GameResult) error
}

// Options configures a table.
type Options struct {
	TargetVictories int                // round victories that end the game
	Rand            *rand.Rand         // shuffle source, nil for the global source
	Recorder        ResultRecorder     // optional
	Logger          logrus.FieldLogger // nil for the standard logger
	OnGameOver      func()             // called once, asynchronously, after the result is recorded
}

// Game represents one Sueca table.
type Game struct {
	ID              string
	Players         [engine.Seats]*shared.Player
	Teams           [2]*shared.Team
	Deck            *shared.Deck
	CurrentTrick    *shared.Trick
	History         [][]shared.Card // completed tricks of the current round
	Trump           shared.Suit
	TrumpCard       shared.Card
	DealerSeat      int
	PlayerTurnIndex int
	GameState       GameState
	Round           int
	TargetVictories int

	mu          sync.Mutex
	sendMessage MessageSender
	rng         *rand.Rand
	recorder    ResultRecorder
	onGameOver  func()
	observer    func(message []byte)
	log         logrus.FieldLogger
}

// NewGame initializes a new game instance. Seats 0 and 2 form team 1,
// seats 1 and 3 form team 2.
func NewGame(players [engine.Seats]*shared.Player, opts Options) *Game {
	if opts.TargetVictories <= 0 {
		opts.TargetVictories = 4
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	id := uuid.NewString()
	return &Game{
		ID:      id,
		Players: players,
		Teams: [2]*shared.Team{
			shared.NewTeam(1, players[0], players[2]),
			shared.NewTeam(2, players[1], players[3]),
		},
		CurrentTrick:    shared.NewTrick(),
		DealerSeat:      len(players) - 1,
		GameState:       Dealing,
		TargetVictories: opts.TargetVictories,
		rng:             opts.Rand,
		recorder:        opts.Recorder,
		onGameOver:      opts.OnGameOver,
		log:             opts.Logger.WithField("game_id", id),
	}
}

// StartGameLoop announces the game, deals the first round and lets bots
// play until a human has to move. It's called in a goroutine by the Hub.
func (g *Game) StartGameLoop(sender MessageSender) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sendMessage = sender
	g.log.Info("Starting game loop")

	playerInfos := make([]protocol.PlayerInfo, len(g.Players))
	for i, p := range g.Players {
		playerInfos[i] = playerInfo(p, i)
	}
	teamInfos := make([]protocol.TeamInfo, len(g.Teams))
	for i, t := range g.Teams {
		teamInfos[i] = protocol.TeamInfo{
			ID:         t.ID,
			Players:    []protocol.PlayerInfo{playerInfos[i], playerInfos[i+2]},
			Victories:  t.Victories,
			TeamNumber: t.TeamNumber,
		}
	}
	g.broadcastMessage(protocol.TypeGameStart, protocol.GameStartPayload{
		GameID:          g.ID,
		Players:         playerInfos,
		Teams:           teamInfos,
		TargetVictories: g.TargetVictories,
	})

	g.startRound()
	g.advance()
}

// startRound shuffles, cuts and deals. The seat after the dealer leads and
// is dealt first, so the dealer's last card turns trump. Assumes lock is held.
func (g *Game) startRound() {
	if g.Round > 0 {
		g.DealerSeat = (g.DealerSeat + 1) % len(g.Players)
	}
	g.Round++
	g.GameState = Dealing
	for _, team := range g.Teams {
		team.ResetPoints()
	}
	g.CurrentTrick = shared.NewTrick()
	g.History = nil

	g.Deck = shared.NewDeck()
	g.Deck.Shuffle(g.rng)
	g.Deck.Cut(1 + g.intN(shared.DeckSize-1))

	leader := (g.DealerSeat + 1) % len(g.Players)
	hands, err := g.Deck.Deal(len(g.Players), shared.HandSize)
	if err != nil {
		g.log.WithError(err).Error("Dealing failed")
		g.GameState = GameOver
		g.broadcastError("Internal server error during dealing.")
		return
	}
	for i, hand := range hands {
		g.Players[(leader+i)%len(g.Players)].Hand = hand
	}
	dealerHand := g.Players[g.DealerSeat].Hand
	g.TrumpCard = dealerHand[len(dealerHand)-1]
	g.Trump = g.TrumpCard.Suit

	for _, p := range g.Players {
		g.sendToPlayer(p.ID, protocol.TypeDealHand, protocol.DealHandPayload{
			Hand:       p.Hand,
			Trump:      g.Trump,
			TrumpCard:  g.TrumpCard,
			DealerSeat: g.DealerSeat,
			Round:      g.Round,
		})
	}

	g.GameState = Playing
	g.PlayerTurnIndex = leader
	g.log.WithFields(logrus.Fields{
		"round":  g.Round,
		"dealer": g.DealerSeat,
		"trump":  g.Trump,
	}).Info("Round started")
	g.broadcastGameState()
}

func (g *Game) intN(n int) int {
	if g.rng != nil {
		return g.rng.IntN(n)
	}
	return rand.IntN(n)
}

// advance lets bot seats play until a human must move or the game ends.
// Assumes lock is held.
func (g *Game) advance() {
	for g.GameState == Playing {
		seat := g.PlayerTurnIndex
		player := g.Players[seat]
		if !player.Bot {
			g.notifyCurrentPlayerTurn()
			return
		}
		advice, err := engine.Advise(g.situation(seat))
		if err != nil {
			g.log.WithError(err).WithField("seat", seat).Error("Bot could not choose a card")
			g.GameState = GameOver
			g.broadcastError("Internal server error: bot failed to move.")
			return
		}
		if err := g.playCard(seat, advice.Card, advice.Reason); err != nil {
			g.log.WithError(err).WithField("seat", seat).Error("Bot chose an invalid card")
			g.GameState = GameOver
			g.broadcastError("Internal server error: bot failed to move.")
			return
		}
	}
}

// situation is what the seat may know when choosing a card.
func (g *Game) situation(seat int) engine.Situation {
	return engine.Situation{
		Hand:    g.Players[seat].Hand,
		Trick:   g.CurrentTrick.Plain(),
		Trump:   g.Trump,
		History: g.History,
	}
}

// HandlePlayerAction processes incoming actions from a player.
func (g *Game) HandlePlayerAction(clientID string, msg protocol.Message) {
	g.mu.Lock()
	defer g.mu.Unlock()

	log := g.log.WithFields(logrus.Fields{"client_id": clientID, "type": msg.Type})
	if g.GameState == GameOver {
		log.Info("Action received but game is over")
		g.sendErrorToPlayer(clientID, "Game is already over.")
		return
	}

	seat := g.GetPlayerIndex(clientID)
	if seat == -1 {
		log.Warn("Action from unknown client")
		return
	}

	switch msg.Type {
	case protocol.TypePlayCard:
		if g.GameState != Playing {
			log.WithField("state", g.GameState).Info("play_card in wrong state")
			g.sendErrorToPlayer(clientID, "Cannot play card now.")
			return
		}
		if seat != g.PlayerTurnIndex {
			log.WithField("turn", g.PlayerTurnIndex).Info("play_card out of turn")
			g.sendErrorToPlayer(clientID, "Not your turn.")
			return
		}

		var payload protocol.PlayCardPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.WithError(err).Info("Invalid play_card payload")
			g.sendErrorToPlayer(clientID, "Invalid play_card message.")
			return
		}
		if err := g.playCard(seat, payload.Card, 0); err != nil {
			log.WithError(err).WithField("card", payload.Card).Info("Rejected play")
			g.sendErrorToPlayer(clientID, "Invalid move: "+err.Error()+".")
			return
		}
		g.advance()

	case protocol.TypeHint:
		if g.GameState != Playing || seat != g.PlayerTurnIndex {
			g.sendErrorToPlayer(clientID, "Not your turn.")
			return
		}
		advice, err := engine.Advise(g.situation(seat))
		if err != nil {
			log.WithError(err).Error("Hint failed")
			g.sendErrorToPlayer(clientID, "No hint available.")
			return
		}
		g.sendToPlayer(clientID, protocol.TypeHint, protocol.HintPayload{Card: advice.Card, Reason: advice.Reason})

	default:
		log.Warn("Unhandled action type")
		g.sendErrorToPlayer(clientID, "Unknown action.")
	}
}

// playCard validates and applies a play. reason is zero for human plays.
// Assumes lock is held.
func (g *Game) playCard(seat int, card shared.Card, reason engine.Reason) error {
	player := g.Players[seat]
	if !player.HasCard(card) {
		return errNotInHand
	}
	if !engine.IsLegal(card, player.Hand, g.CurrentTrick.Plain(), g.Trump) {
		return errIllegalCard
	}

	player.RemoveCard(card)
	g.CurrentTrick.AddCard(card, seat)
	g.log.WithFields(logrus.Fields{
		"seat":   seat,
		"player": player.Name,
		"card":   card,
		"reason": reasonField(reason),
	}).Debug("Card played")

	g.broadcastMessage(protocol.TypeCardPlayed, protocol.CardPlayedPayload{
		PlayerID: player.ID,
		Seat:     seat,
		Card:     card,
		Reason:   reason,
	})

	if len(g.CurrentTrick.Cards) == len(g.Players) {
		g.endTrick()
		return nil
	}
	g.PlayerTurnIndex = (g.PlayerTurnIndex + 1) % len(g.Players)
	g.broadcastGameState()
	return nil
}

func reasonField(r engine.Reason) string {
	if r == 0 {
		return "human"
	}
	return r.String()
}

// endTrick scores the trick for the winning team. Assumes lock is held.
func (g *Game) endTrick() {
	winnerSeat := g.CurrentTrick.DetermineWinner(g.Trump)
	winner := g.Players[winnerSeat]
	team := g.Teams[winnerSeat%2]
	points := g.CurrentTrick.Points()
	team.AddPoints(points)

	trickCards := g.CurrentTrick.Plain()
	g.History = append(g.History, trickCards)
	g.log.WithFields(logrus.Fields{
		"winner": winner.Name,
		"seat":   winnerSeat,
		"points": points,
		"team":   team.TeamNumber,
	}).Debug("Trick won")

	g.broadcastMessage(protocol.TypeTrickEnd, protocol.TrickEndPayload{
		WinnerID:   winner.ID,
		WinnerSeat: winnerSeat,
		Cards:      trickCards,
		Points:     points,
	})

	g.CurrentTrick = shared.NewTrick()
	g.PlayerTurnIndex = winnerSeat

	if len(g.History) == shared.HandSize {
		g.endRound()
		return
	}
	g.broadcastGameState()
}

// endRound converts the round's points into victories. Assumes lock is held.
func (g *Game) endRound() {
	g.GameState = RoundOver
	for _, team := range g.Teams {
		team.Victories += shared.RoundVictories(team.Points)
	}
	g.log.WithFields(logrus.Fields{
		"round":           g.Round,
		"team1_points":    g.Teams[0].Points,
		"team2_points":    g.Teams[1].Points,
		"team1_victories": g.Teams[0].Victories,
		"team2_victories": g.Teams[1].Victories,
	}).Info("Round ended")

	g.broadcastMessage(protocol.TypeRoundEnd, protocol.RoundEndPayload{
		Round:          g.Round,
		Team1Points:    g.Teams[0].Points,
		Team2Points:    g.Teams[1].Points,
		Team1Victories: g.Teams[0].Victories,
		Team2Victories: g.Teams[1].Victories,
	})

	for _, team := range g.Teams {
		if team.Victories >= g.TargetVictories {
			g.endGame(team, false)
			return
		}
	}
	g.startRound()
}

// endGame announces the winner and records the result. Assumes lock is held.
func (g *Game) endGame(winner *shared.Team, forfeit bool) {
	g.GameState = GameOver
	g.log.WithFields(logrus.Fields{
		"winning_team": winner.TeamNumber,
		"forfeit":      forfeit,
		"rounds":       g.Round,
	}).Info("Game over")

	g.broadcastMessage(protocol.TypeGameOver, protocol.GameOverPayload{
		WinningTeamID:  winner.ID,
		WinningTeam:    winner.TeamNumber,
		Team1Victories: g.Teams[0].Victories,
		Team2Victories: g.Teams[1].Victories,
		Forfeit:        forfeit,
	})

	go g.finish(g.result(winner, forfeit))
}

// finish records the result and runs the game-over hook. It runs without
// the game lock so a slow store cannot stall play at other tables.
func (g *Game) finish(result database.GameResult) {
	if g.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.recorder.Insert(ctx, result); err != nil {
			g.log.WithError(err).Error("Failed to record result")
		}
	}
	if g.onGameOver != nil {
		g.onGameOver()
	}
}

func (g *Game) result(winner *shared.Team, forfeit bool) database.GameResult {
	return database.GameResult{
		ID:             g.ID,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		Player1:        g.Players[0].Name,
		Player2:        g.Players[1].Name,
		Player3:        g.Players[2].Name,
		Player4:        g.Players[3].Name,
		Team1Victories: g.Teams[0].Victories,
		Team2Victories: g.Teams[1].Victories,
		WinningTeam:    winner.TeamNumber,
		Rounds:         g.Round,
		Forfeit:        forfeit,
	}
}

// HandlePlayerDisconnect forfeits the game to the other team.
func (g *Game) HandlePlayerDisconnect(clientID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.GameState == GameOver {
		return
	}
	seat := g.GetPlayerIndex(clientID)
	if seat == -1 {
		return
	}

	g.log.WithFields(logrus.Fields{"client_id": clientID, "player": g.Players[seat].Name}).Info("Player disconnected, forfeiting")
	g.broadcastMessage(protocol.TypePlayerLeft, protocol.PlayerLeftPayload{PlayerID: clientID})
	g.endGame(g.Teams[(seat+1)%2], true)
}

// Over reports whether the game has finished.
func (g *Game) Over() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.GameState == GameOver
}

// Observe registers fn to receive a copy of every broadcast, as a spectator
// would. Call it before StartGameLoop.
func (g *Game) Observe(fn func(message []byte)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observer = fn
}

// --- Messaging Helpers (Assume lock is held) ---

func (g *Game) broadcastMessage(msgType string, payload any) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		g.log.WithError(err).WithField("type", msgType).Error("Failed to build message")
		return
	}
	if g.observer != nil {
		g.observer(msg)
	}
	for _, p := range g.Players {
		if !p.Bot {
			g.send(p.ID, msg)
		}
	}
}

func (g *Game) sendToPlayer(playerID string, msgType string, payload any) {
	if p := g.GetPlayerByID(playerID); p != nil && p.Bot {
		return
	}
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		g.log.WithError(err).WithField("type", msgType).Error("Failed to build message")
		return
	}
	g.send(playerID, msg)
}

func (g *Game) send(playerID string, msg []byte) {
	if g.sendMessage == nil {
		return
	}
	g.sendMessage(playerID, msg)
}

func (g *Game) sendErrorToPlayer(playerID string, errorMsg string) {
	g.sendToPlayer(playerID, protocol.TypeError, protocol.ErrorPayload{Message: errorMsg})
}

func (g *Game) broadcastError(errorMsg string) {
	g.broadcastMessage(protocol.TypeError, protocol.ErrorPayload{Message: errorMsg})
}

func (g *Game) broadcastGameState() {
	g.broadcastMessage(protocol.TypeGameState, protocol.GameStatePayload{
		CurrentPlayerID: g.Players[g.PlayerTurnIndex].ID,
		CardsOnTable:    g.CurrentTrick.Plain(),
		Trump:           g.Trump,
		Team1Points:     g.Teams[0].Points,
		Team2Points:     g.Teams[1].Points,
		GameState:       string(g.GameState),
	})
}

func (g *Game) notifyCurrentPlayerTurn() {
	p := g.Players[g.PlayerTurnIndex]
	g.sendToPlayer(p.ID, protocol.TypeYourTurn, protocol.YourTurnPayload{
		PlayerID:   p.ID,
		ValidMoves: engine.LegalMoves(p.Hand, g.CurrentTrick.Plain(), g.Trump),
	})
}

// --- Utility Helpers ---

// GetPlayerByID finds a player struct by their ID.
func (g *Game) GetPlayerByID(playerID string) *shared.Player {
	for _, p := range g.Players {
		if p != nil && p.ID == playerID {
			return p
		}
	}
	return nil
}

// GetPlayerIndex finds the seat (0-3) of a player by their ID. Returns -1 if not found.
func (g *Game) GetPlayerIndex(playerID string) int {
	for i, p := range g.Players {
		if p != nil && p.ID == playerID {
			return i
		}
	}
	return -1
}

func playerInfo(p *shared.Player, seat int) protocol.PlayerInfo {
	return protocol.PlayerInfo{ID: p.ID, Name: p.Name, Seat: seat, Bot: p.Bot}
}
