// Command simulate plays all-bot Sueca games and reports how often each
// team wins and which policy rules fire.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sueca-ai/internal/config"
	"sueca-ai/internal/database"
	"sueca-ai/internal/game"
	"sueca-ai/internal/protocol"
	"sueca-ai/internal/shared"
)

// tally counts outcomes across games. It doubles as the games' recorder.
type tally struct {
	mu              sync.Mutex
	games, forfeits int
	wins            [2]int
	rounds          int
	reasons         map[string]int
	store           *database.Service
}

func (t *tally) Insert(ctx context.Context, result database.GameResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.games++
	t.wins[result.WinningTeam-1]++
	t.rounds += result.Rounds
	if result.Forfeit {
		t.forfeits++
	}
	if t.store != nil {
		return t.store.Insert(ctx, result)
	}
	return nil
}

func main() {
	games := flag.Int("games", 100, "number of games to play")
	target := flag.Int("target", 4, "round victories needed to win a game")
	seed := flag.Uint64("seed", 1, "shuffle seed")
	record := flag.Bool("record", false, "store results in the configured database")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid logging configuration")
	}

	t := &tally{reasons: map[string]int{}}
	if *record {
		db, err := database.New(context.Background(), cfg.DBDriver, cfg.DBDSN, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open result store")
		}
		defer db.Close()
		t.store = db
	}

	// Bots receive no messages, so reasons are read off the broadcast stream.
	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	var wg sync.WaitGroup
	for i := range *games {
		players := [4]*shared.Player{}
		for s := range players {
			players[s] = shared.NewBot(uuid.NewString(), "Bot "+string(rune('1'+s)))
		}
		g := game.NewGame(players, game.Options{
			TargetVictories: *target,
			Rand:            rng,
			Recorder:        t,
			Logger:          logger.WithField("game", i+1),
			OnGameOver:      wg.Done,
		})
		g.Observe(func(message []byte) {
			var msg protocol.Message
			if json.Unmarshal(message, &msg) != nil || msg.Type != protocol.TypeCardPlayed {
				return
			}
			var played protocol.CardPlayedPayload
			if json.Unmarshal(msg.Payload, &played) == nil {
				t.reasons[played.Reason.String()]++
			}
		})
		wg.Add(1)
		g.StartGameLoop(nil)
	}
	wg.Wait()

	fields := logrus.Fields{
		"games":      t.games,
		"team1_wins": t.wins[0],
		"team2_wins": t.wins[1],
		"forfeits":   t.forfeits,
	}
	if t.games > 0 {
		fields["avg_rounds"] = float64(t.rounds) / float64(t.games)
	}
	logger.WithFields(fields).Info("Simulation finished")

	tags := make([]string, 0, len(t.reasons))
	for tag := range t.reasons {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		logger.WithFields(logrus.Fields{"reason": tag, "count": t.reasons[tag]}).Info("Rule usage")
	}
}
