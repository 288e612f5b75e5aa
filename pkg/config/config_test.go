package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "SEED", "STRICT_DURATIONS", "MOMENTUM", "ERROR_STORE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.False(t, cfg.Strict)
	assert.Equal(t, 500, cfg.Momentum)
	assert.Equal(t, "file", cfg.ErrorStore)
	assert.Equal(t, 1000, cfg.BeatDurationMS)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEED", "42")
	t.Setenv("STRICT_DURATIONS", "true")
	t.Setenv("MOMENTUM", "0")
	t.Setenv("ERROR_STORE", "badger")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 0, cfg.Momentum)
	assert.Equal(t, "badger", cfg.ErrorStore)
	assert.True(t, cfg.IsProduction())
}
