package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the service settings read from the environment.
type Config struct {
	Addr            string   // listen address for the HTTP server
	DBDriver        string   // "sqlite" or "pgx"
	DBDSN           string   // data source name for DBDriver
	LogLevel        string   // logrus level name
	LogFormat       string   // "text" or "json"
	AllowedOrigins  []string // CORS origins
	TargetVictories int      // round victories that end a table game
}

// Defaults used when a variable is unset.
const (
	DefaultAddr            = ":8000"
	DefaultDBDriver        = "sqlite"
	DefaultDBDSN           = "./sueca.db"
	DefaultTargetVictories = 4
)

// Load reads an optional .env file (files listed in envFiles, or ".env" when
// none are given) and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := Config{
		Addr:            getenv("SUECA_ADDR", DefaultAddr),
		DBDriver:        getenv("SUECA_DB_DRIVER", DefaultDBDriver),
		DBDSN:           getenv("SUECA_DB_DSN", DefaultDBDSN),
		LogLevel:        getenv("SUECA_LOG_LEVEL", "info"),
		LogFormat:       getenv("SUECA_LOG_FORMAT", "text"),
		AllowedOrigins:  splitList(getenv("SUECA_ALLOWED_ORIGINS", "*")),
		TargetVictories: DefaultTargetVictories,
	}

	if v := os.Getenv("SUECA_TARGET_VICTORIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("SUECA_TARGET_VICTORIES must be a positive integer, got %q", v)
		}
		cfg.TargetVictories = n
	}
	switch cfg.DBDriver {
	case "sqlite", "pgx":
	default:
		return Config{}, fmt.Errorf("SUECA_DB_DRIVER must be sqlite or pgx, got %q", cfg.DBDriver)
	}
	return cfg, nil
}

// NewLogger builds the process logger from the configured level and format.
func (c Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("SUECA_LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)
	switch c.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("SUECA_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return logger, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
