package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MASTER_API_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 600, cfg.RateLimitPerMinute)
	assert.Equal(t, time.Minute, cfg.StatisticsSyncInterval)
	assert.Empty(t, cfg.MasterAPIKey)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "  ")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigParsesLists(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MASTER_API_KEY", "MASTERKEY00000000000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "MASTERKEY00000000000", cfg.MasterAPIKey)
	assert.True(t, cfg.IsProduction())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel(&Config{LogLevel: "debug"}).String())
	assert.Equal(t, "WARN", parseLevel(&Config{LogLevel: "WARNING"}).String())
	assert.Equal(t, "INFO", parseLevel(&Config{LogLevel: "bogus"}).String())
	assert.Equal(t, "INFO", parseLevel(nil).String())
}
