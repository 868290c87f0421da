package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sueca-ai/internal/engine"
	"sueca-ai/internal/game"
	"sueca-ai/internal/protocol"
	"sueca-ai/internal/shared"
)

// clientMessage is a helper struct to pass messages along with the client reference.
type clientMessage struct {
	client  *Client
	message protocol.Message
}

const gameCodeLength = 5 // Length of the unique game code

// lobby is a table waiting for players.
type lobby struct {
	clients         []*Client
	targetVictories int
}

// Hub manages active WebSocket connections, lobbies, and game rooms.
type Hub struct {
	clients        map[*Client]bool
	lobbies        map[string]*lobby     // Map game code to waiting lobby
	games          map[string]*game.Game // Map game code to game instance
	clientToGame   map[*Client]string    // Map client to game code (lobby or active game)
	processMessage chan clientMessage
	register       chan *Client
	unregister     chan *Client
	done           chan struct{}
	clientMu       sync.RWMutex
	lobbyMu        sync.RWMutex
	gameMu         sync.RWMutex

	recorder        game.ResultRecorder
	targetVictories int
	log             logrus.FieldLogger
}

// NewHub creates a new Hub instance. recorder may be nil.
func NewHub(recorder game.ResultRecorder, targetVictories int, log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:         make(map[*Client]bool),
		lobbies:         make(map[string]*lobby),
		games:           make(map[string]*game.Game),
		clientToGame:    make(map[*Client]string),
		processMessage:  make(chan clientMessage),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		done:            make(chan struct{}),
		recorder:        recorder,
		targetVictories: targetVictories,
		log:             log,
	}
}

// generateGameCode creates a unique alphanumeric game code.
func (h *Hub) generateGameCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		var sb strings.Builder
		for range gameCodeLength {
			sb.WriteByte(letters[rand.IntN(len(letters))])
		}
		code := sb.String()

		h.lobbyMu.RLock()
		_, lobbyExists := h.lobbies[code]
		h.lobbyMu.RUnlock()

		h.gameMu.RLock()
		_, gameExists := h.games[code]
		h.gameMu.RUnlock()

		if !lobbyExists && !gameExists {
			return code
		}
		h.log.WithField("code", code).Debug("Game code collided, retrying")
	}
}

// Run starts the Hub's main loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.log.Info("Hub stopped")
			return

		case client := <-h.register:
			h.clientMu.Lock()
			h.clients[client] = true
			h.clientMu.Unlock()
			h.log.WithFields(logrus.Fields{"client_id": client.ID, "remote_addr": client.conn.RemoteAddr()}).Info("Client connected")

		case client := <-h.unregister:
			h.removeClient(client)

		case clientMsg := <-h.processMessage:
			h.handleMessage(clientMsg.client, clientMsg.message)
		}
	}
}

// removeClient drops a client from the hub, its lobby, or its game.
func (h *Hub) removeClient(client *Client) {
	log := h.log.WithFields(logrus.Fields{"client_id": client.ID, "name": client.Name})

	h.clientMu.Lock()
	gameCode, inGameOrLobby := h.clientToGame[client]
	_, clientExists := h.clients[client]
	if clientExists {
		delete(h.clients, client)
		delete(h.clientToGame, client)
		close(client.send)
		log.Info("Client disconnected")
	}
	h.clientMu.Unlock()

	if !inGameOrLobby {
		return
	}

	h.lobbyMu.Lock()
	if l, ok := h.lobbies[gameCode]; ok {
		remaining := make([]*Client, 0, len(l.clients))
		for _, c := range l.clients {
			if c != client {
				remaining = append(remaining, c)
			}
		}
		if len(remaining) > 0 {
			l.clients = remaining
			h.lobbyMu.Unlock()
			log.WithField("code", gameCode).Info("Client left lobby")
			h.broadcastLobbyUpdate(gameCode)
			return
		}
		delete(h.lobbies, gameCode)
		h.lobbyMu.Unlock()
		log.WithField("code", gameCode).Info("Last client left lobby, lobby deleted")
		return
	}
	h.lobbyMu.Unlock()

	h.gameMu.RLock()
	gameInstance, gameExists := h.games[gameCode]
	h.gameMu.RUnlock()
	if gameExists {
		log.WithField("code", gameCode).Info("Client left game, notifying game")
		go gameInstance.HandlePlayerDisconnect(client.ID)
	}
}

// handleMessage processes a message received from a client.
func (h *Hub) handleMessage(client *Client, msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeCreateGame:
		h.handleCreateGame(client, msg)
	case protocol.TypeJoinGame:
		h.handleJoinGame(client, msg)
	case protocol.TypePlayCard, protocol.TypeHint:
		h.handleGameAction(client, msg)
	case protocol.TypePing:
		pongMsg, _ := protocol.NewMessage(protocol.TypePong, nil)
		h.sendMessageToClient(client.ID, pongMsg)
	default:
		h.log.WithFields(logrus.Fields{"client_id": client.ID, "type": msg.Type}).Info("Unknown message type")
		h.sendErrorToClient(client, "Unknown message type.")
	}
}

// handleCreateGame opens a lobby, or starts at once against bots.
func (h *Hub) handleCreateGame(client *Client, msg protocol.Message) {
	log := h.log.WithField("client_id", client.ID)
	h.clientMu.RLock()
	_, alreadyInGame := h.clientToGame[client]
	h.clientMu.RUnlock()
	if alreadyInGame {
		log.Info("Create rejected, already in a game")
		h.sendErrorToClient(client, "Already in a game or lobby.")
		return
	}

	var payload protocol.CreateGamePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.WithError(err).Info("Invalid create_game payload")
		h.sendErrorToClient(client, "Invalid create_game message format.")
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		h.sendErrorToClient(client, "Name cannot be empty.")
		return
	}
	if payload.TargetVictories < 0 {
		h.sendErrorToClient(client, "Target victories must be positive.")
		return
	}
	target := payload.TargetVictories
	if target == 0 {
		target = h.targetVictories
	}

	gameCode := h.generateGameCode()

	h.clientMu.Lock()
	client.Name = payload.Name
	h.clientToGame[client] = gameCode
	h.clientMu.Unlock()

	h.lobbyMu.Lock()
	h.lobbies[gameCode] = &lobby{clients: []*Client{client}, targetVictories: target}
	h.lobbyMu.Unlock()

	log.WithFields(logrus.Fields{"name": client.Name, "code": gameCode, "with_bots": payload.WithBots}).Info("Lobby created")

	createdMsg, _ := protocol.NewMessage(protocol.TypeGameCreated, protocol.GameCreatedPayload{GameCode: gameCode})
	h.sendMessageToClient(client.ID, createdMsg)
	h.broadcastLobbyUpdate(gameCode)

	if payload.WithBots {
		h.startGame(gameCode)
	}
}

// handleJoinGame handles a request to join an existing game lobby.
func (h *Hub) handleJoinGame(client *Client, msg protocol.Message) {
	log := h.log.WithField("client_id", client.ID)
	h.clientMu.RLock()
	_, alreadyInGame := h.clientToGame[client]
	h.clientMu.RUnlock()
	if alreadyInGame {
		h.sendJoinError(client, "Already in a game or lobby.")
		return
	}

	var payload protocol.JoinGamePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.WithError(err).Info("Invalid join_game payload")
		h.sendJoinError(client, "Invalid join_game message format.")
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		h.sendJoinError(client, "Name cannot be empty.")
		return
	}
	if payload.GameCode == "" {
		h.sendJoinError(client, "Game code cannot be empty.")
		return
	}
	gameCode := strings.ToUpper(strings.TrimSpace(payload.GameCode))

	h.lobbyMu.Lock()
	l, lobbyExists := h.lobbies[gameCode]
	if !lobbyExists {
		h.lobbyMu.Unlock()
		log.WithField("code", gameCode).Info("Join of unknown lobby")
		h.sendJoinError(client, "Game code not found.")
		return
	}
	if len(l.clients) >= engine.Seats {
		h.lobbyMu.Unlock()
		h.sendJoinError(client, "Game lobby is full.")
		return
	}
	for _, existing := range l.clients {
		if existing.Name == payload.Name {
			h.lobbyMu.Unlock()
			h.sendJoinError(client, "Name already taken in this lobby.")
			return
		}
	}
	client.Name = payload.Name
	l.clients = append(l.clients, client)
	size := len(l.clients)
	h.lobbyMu.Unlock()

	h.clientMu.Lock()
	h.clientToGame[client] = gameCode
	h.clientMu.Unlock()

	log.WithFields(logrus.Fields{"name": client.Name, "code": gameCode, "size": size}).Info("Client joined lobby")
	h.broadcastLobbyUpdate(gameCode)

	if size == engine.Seats {
		h.startGame(gameCode)
	}
}

// startGame turns a lobby into a running game, seating bots in empty seats.
func (h *Hub) startGame(gameCode string) {
	h.gameMu.Lock()
	h.lobbyMu.Lock()
	l, ok := h.lobbies[gameCode]
	if !ok {
		h.lobbyMu.Unlock()
		h.gameMu.Unlock()
		h.log.WithField("code", gameCode).Error("Lobby vanished before game start")
		return
	}
	players := seatPlayers(l.clients)
	newGame := game.NewGame(players, game.Options{
		TargetVictories: l.targetVictories,
		Recorder:        h.recorder,
		Logger:          h.log.WithField("code", gameCode),
		OnGameOver:      func() { h.finishGame(gameCode) },
	})
	h.games[gameCode] = newGame
	delete(h.lobbies, gameCode)
	h.lobbyMu.Unlock()
	h.gameMu.Unlock()

	h.log.WithFields(logrus.Fields{
		"code":    gameCode,
		"game_id": newGame.ID,
		"players": playerNames(players),
	}).Info("Game started")

	go newGame.StartGameLoop(h.sendMessageToClient)
}

// finishGame forgets a finished game so its players may create or join another.
func (h *Hub) finishGame(gameCode string) {
	h.gameMu.Lock()
	delete(h.games, gameCode)
	h.gameMu.Unlock()

	h.clientMu.Lock()
	for c, code := range h.clientToGame {
		if code == gameCode {
			delete(h.clientToGame, c)
		}
	}
	h.clientMu.Unlock()
	h.log.WithField("code", gameCode).Info("Game removed")
}

// handleGameAction forwards play_card and hint to the client's game.
func (h *Hub) handleGameAction(client *Client, msg protocol.Message) {
	h.clientMu.RLock()
	gameCode, inGame := h.clientToGame[client]
	h.clientMu.RUnlock()
	if !inGame {
		h.sendErrorToClient(client, "You are not in an active game or lobby.")
		return
	}

	h.gameMu.RLock()
	gameInstance, gameExists := h.games[gameCode]
	h.gameMu.RUnlock()
	if !gameExists {
		h.sendErrorToClient(client, "Game not found or not active.")
		return
	}

	gameInstance.HandlePlayerAction(client.ID, msg)
}

// seatPlayers seats clients in join order and fills the rest with bots.
func seatPlayers(clients []*Client) [engine.Seats]*shared.Player {
	var players [engine.Seats]*shared.Player
	bot := 1
	for i := range players {
		if i < len(clients) {
			players[i] = shared.NewPlayer(clients[i].ID, clients[i].Name)
			continue
		}
		players[i] = shared.NewBot(uuid.NewString(), "Bot "+string(rune('0'+bot)))
		bot++
	}
	return players
}

func playerNames(players [engine.Seats]*shared.Player) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return names
}

// sendMessageToClient is the game's MessageSender. Sends never block; a
// client whose buffer is full is unregistered.
func (h *Hub) sendMessageToClient(clientID string, message []byte) {
	h.clientMu.RLock()
	var target *Client
	for client := range h.clients {
		if client.ID == clientID {
			target = client
			break
		}
	}
	if target == nil {
		h.clientMu.RUnlock()
		h.log.WithField("client_id", clientID).Debug("Send to unknown client")
		return
	}

	select {
	case target.send <- message:
		h.clientMu.RUnlock()
	default:
		h.clientMu.RUnlock()
		h.log.WithField("client_id", clientID).Warn("Send buffer full, dropping client")
		go func() {
			select {
			case h.unregister <- target:
			case <-h.done:
			}
		}()
	}
}

// broadcastLobbyUpdate sends the current list of players in the lobby.
func (h *Hub) broadcastLobbyUpdate(gameCode string) {
	h.lobbyMu.RLock()
	l, ok := h.lobbies[gameCode]
	if !ok {
		h.lobbyMu.RUnlock()
		return
	}
	infos := make([]protocol.PlayerInfo, len(l.clients))
	ids := make([]string, len(l.clients))
	for i, c := range l.clients {
		infos[i] = protocol.PlayerInfo{ID: c.ID, Name: c.Name, Seat: i}
		ids[i] = c.ID
	}
	h.lobbyMu.RUnlock()

	msg, err := protocol.NewMessage(protocol.TypeLobbyUpdate, protocol.LobbyUpdatePayload{Players: infos})
	if err != nil {
		h.log.WithError(err).Error("Failed to build lobby_update")
		return
	}
	for _, id := range ids {
		h.sendMessageToClient(id, msg)
	}
}

// sendErrorToClient sends a generic error message to a specific client.
func (h *Hub) sendErrorToClient(client *Client, errorMsg string) {
	msg, err := protocol.NewMessage(protocol.TypeError, protocol.ErrorPayload{Message: errorMsg})
	if err != nil {
		h.log.WithError(err).Error("Failed to build error message")
		return
	}
	h.sendMessageToClient(client.ID, msg)
}

// sendJoinError sends a specific join error message to a client.
func (h *Hub) sendJoinError(client *Client, errorMsg string) {
	msg, err := protocol.NewMessage(protocol.TypeJoinError, protocol.JoinErrorPayload{Message: errorMsg})
	if err != nil {
		h.log.WithError(err).Error("Failed to build join_error message")
		return
	}
	h.sendMessageToClient(client.ID, msg)
}
