package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "MAX_TRIES", "HARD_MODE", "WORD_LENGTH", "SESSION_TTL", "JWT_SECRET"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, ":5175", cfg.Addr())
	assert.Equal(t, 5, cfg.Game.MaxTries)
	assert.False(t, cfg.Game.HardMode)
	assert.Equal(t, 5, cfg.Game.WordLength)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.TokenTTL())
	assert.False(t, cfg.Production())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_TRIES", "6")
	t.Setenv("HARD_MODE", "true")
	t.Setenv("WORD_LENGTH", "0")
	t.Setenv("SESSION_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 6, cfg.Game.MaxTries)
	assert.True(t, cfg.Game.HardMode)
	assert.Equal(t, 0, cfg.Game.WordLength)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		contains string
	}{
		{name: "zero tries", env: map[string]string{"MAX_TRIES": "0"}, contains: "MAX_TRIES"},
		{name: "not a number", env: map[string]string{"MAX_TRIES": "many"}, contains: "parse env"},
		{name: "negative length", env: map[string]string{"WORD_LENGTH": "-1"}, contains: "WORD_LENGTH"},
		{name: "production without secret", env: map[string]string{"APP_ENV": "production", "JWT_SECRET": ""}, contains: "JWT_SECRET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
