package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SUECA_ADDR", "SUECA_DB_DRIVER", "SUECA_DB_DSN", "SUECA_LOG_LEVEL",
		"SUECA_LOG_FORMAT", "SUECA_ALLOWED_ORIGINS", "SUECA_TARGET_VICTORIES",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, DefaultDBDSN, cfg.DBDSN)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 4, cfg.TargetVictories)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"SUECA_ADDR=:9999\nSUECA_ALLOWED_ORIGINS=http://a.test, http://b.test\nSUECA_TARGET_VICTORIES=2\n",
	), 0o600))

	// t.Setenv to "" leaves the variables present, which godotenv will not
	// override, so unset them for this test.
	for _, k := range []string{"SUECA_ADDR", "SUECA_ALLOWED_ORIGINS", "SUECA_TARGET_VICTORIES"} {
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 2, cfg.TargetVictories)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUECA_TARGET_VICTORIES", "zero")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	t.Setenv("SUECA_TARGET_VICTORIES", "")
	t.Setenv("SUECA_DB_DRIVER", "oracle")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := Config{LogLevel: "debug", LogFormat: "json"}.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = Config{LogLevel: "loud"}.NewLogger()
	assert.Error(t, err)
	_, err = Config{LogLevel: "info", LogFormat: "xml"}.NewLogger()
	assert.Error(t, err)
}
