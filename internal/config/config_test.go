package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khusa71/agritech-chat-assistant/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.SourceFetchTimeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.CacheCapacity)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.InDelta(t, 0.3, cfg.MinScore, 0.001)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9999")
	t.Setenv("SNAPSHOT_CACHE_TTL", "30m")
	t.Setenv("RECOMMEND_MAX_RESULTS", "10")
	t.Setenv("AGMARKNET_API_KEY", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.MaxResults)
	assert.Equal(t, "secret", cfg.AgmarknetAPIKey)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SNAPSHOT_CACHE_TTL", "soon")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadValidatesRanges(t *testing.T) {
	t.Setenv("APP_ENV", "testing") // not an allowed environment
	_, err := config.Load()
	assert.Error(t, err)
}
