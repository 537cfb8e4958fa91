package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "0.0.0.0:8000", cfg.Address())
	assert.Equal(t, 24*time.Hour, cfg.Identity.SessionTTL)
	assert.Equal(t, "@every 30s", cfg.Client.RefreshSchedule)
	assert.Contains(t, cfg.Database.URL, "sslmode=disable")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "7")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("SERVER_ENABLE_METRICS", "false")
	t.Setenv("TASKBOARD_URL", "http://tasks.internal:8000/")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/tasks")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.Equal(t, 7*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 90*time.Minute, cfg.Identity.SessionTTL)
	assert.False(t, cfg.HTTP.EnableMetrics)
	assert.Equal(t, "http://tasks.internal:8000", cfg.Client.BaseURL)
	assert.Equal(t, "postgres://u:p@db:5432/tasks", cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL, "an explicitly empty REDIS_URL selects in-memory stores")
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_MAX_CONN", "lots")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.HTTP.MaxConn)
	assert.Equal(t, 15*time.Second, cfg.Context.ShutdownTimeout)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)
}
