package pkg

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/bt-analytics-service/internal/config"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories/memory"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories/sqlite"
)

func TestInitRepositoryWithoutDatabaseURL(t *testing.T) {
	repo, err := InitRepository(&config.Config{DBDriver: "postgres"})
	require.NoError(t, err)
	assert.IsType(t, &memory.Repository{}, repo)
}

func TestInitRepositorySQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	repo, err := InitRepository(&config.Config{DBDriver: "sqlite", DatabaseURL: path})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	assert.IsType(t, &sqlite.Repository{}, repo)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(&config.Config{RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(&config.Config{RedisURL: "not a url"})
	assert.Error(t, err)
}
