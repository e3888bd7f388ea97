package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "REDIS_URL", "SESSION_TTL", "SUBMIT_DELAY", "SESSION_SECRET", "SURVEY_SCHEMA", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.SubmitDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "*", cfg.AllowedOrigins)
	assert.Empty(t, cfg.SchemaPath)
	assert.False(t, cfg.UsesRedis())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SUBMIT_DELAY", "0s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SURVEY_SCHEMA", "/etc/survey.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, time.Duration(0), cfg.SubmitDelay)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/etc/survey.yaml", cfg.SchemaPath)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SESSION_TTL", "soon"},
		{"SESSION_TTL", "-1h"},
		{"SUBMIT_DELAY", "-2s"},
		{"LOG_LEVEL", "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
