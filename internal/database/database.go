package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no results.
var ErrNotFound = errors.New("no results found")

const tableName = "sueca_results"

const createTable = `
create table if not exists sueca_results (
	id text not null primary key,
	created_at text not null,
	player1 text not null,
	player2 text not null,
	player3 text not null,
	player4 text not null,
	team1_victories integer not null,
	team2_victories integer not null,
	winning_team integer not null,
	rounds integer not null,
	forfeit boolean not null
);
`

const selectColumns = "id, created_at, player1, player2, player3, player4, team1_victories, team2_victories, winning_team, rounds, forfeit"

// Service stores finished game results.
type Service struct {
	db     *sql.DB
	m      sync.Mutex
	driver string
	log    logrus.FieldLogger
}

// New opens the database for driver ("sqlite" or "pgx") and ensures the
// results table exists.
func New(ctx context.Context, driver, dsn string, log logrus.FieldLogger) (*Service, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// One connection keeps ":memory:" databases alive and serializes writers.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create %s table: %w", tableName, err)
	}

	log.WithFields(logrus.Fields{"driver": driver, "table": tableName}).Info("Result store ready")
	return &Service{db: db, driver: driver, log: log}, nil
}

func (s *Service) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Service) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Insert records a finished game.
func (s *Service) Insert(ctx context.Context, result GameResult) error {
	s.m.Lock()
	defer s.m.Unlock()
	_, err := s.db.ExecContext(ctx, s.rebind("INSERT INTO "+tableName+
		" ("+selectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		result.ID,
		result.CreatedAt,
		result.Player1,
		result.Player2,
		result.Player3,
		result.Player4,
		result.Team1Victories,
		result.Team2Victories,
		result.WinningTeam,
		result.Rounds,
		result.Forfeit)
	if err != nil {
		return fmt.Errorf("insert result %s: %w", result.ID, err)
	}
	s.log.WithField("game_id", result.ID).Debug("Result stored")
	return nil
}

// GetAll returns every stored result, newest first.
func (s *Service) GetAll(ctx context.Context) ([]GameResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	return s.query(ctx, "SELECT "+selectColumns+" FROM "+tableName+" ORDER BY created_at DESC")
}

// GetByID returns one result or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (GameResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	results, err := s.query(ctx, "SELECT "+selectColumns+" FROM "+tableName+" WHERE id = ?", id)
	if err != nil {
		return GameResult{}, err
	}
	if len(results) == 0 {
		return GameResult{}, ErrNotFound
	}
	return results[0], nil
}

// GetByPlayer returns the results a player took part in, or ErrNotFound.
func (s *Service) GetByPlayer(ctx context.Context, name string) ([]GameResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	results, err := s.query(ctx, "SELECT "+selectColumns+" FROM "+tableName+
		" WHERE player1 = ? OR player2 = ? OR player3 = ? OR player4 = ? ORDER BY created_at DESC",
		name, name, name, name)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results, nil
}

func (s *Service) query(ctx context.Context, query string, args ...any) ([]GameResult, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		var result GameResult
		if err := rows.Scan(
			&result.ID,
			&result.CreatedAt,
			&result.Player1,
			&result.Player2,
			&result.Player3,
			&result.Player4,
			&result.Team1Victories,
			&result.Team2Victories,
			&result.WinningTeam,
			&result.Rounds,
			&result.Forfeit); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
