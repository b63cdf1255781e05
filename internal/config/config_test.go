package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "3000")
	t.Setenv("SEARCH_COOLDOWN", "")
	t.Setenv("TRACKED_CHANNELS", "")

	cfg := Load()

	assert.Equal(t, "groq", cfg.Ai.LLMProvider)
	assert.Equal(t, 20, cfg.Memory.Capacity)
	assert.Equal(t, 50, cfg.Memory.SummaryInterval)
	assert.Equal(t, 90*time.Second, cfg.Search.Cooldown)
	assert.Equal(t, 10*time.Second, cfg.Search.FetchTimeout)
	assert.True(t, cfg.Platform.IsTracked("anything"))
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEARCH_COOLDOWN", "30s")
	t.Setenv("MEMORY_CAPACITY", "5")
	t.Setenv("TRACKED_CHANNELS", " 795661217364312099 , ,42")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.Search.Cooldown)
	assert.Equal(t, 5, cfg.Memory.Capacity)
	assert.Equal(t, []string{"795661217364312099", "42"}, cfg.Platform.TrackedChannels)
	assert.True(t, cfg.Platform.IsTracked("42"))
	assert.False(t, cfg.Platform.IsTracked("7"))
	assert.Equal(t, "sk-test", cfg.LLMAPIKey())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.Ai.LLMProvider = "mystery" }},
		{"zero capacity", func(c *Config) { c.Memory.Capacity = 0 }},
		{"too many candidates", func(c *Config) { c.Search.Candidates = 11 }},
		{"redis backend without url", func(c *Config) {
			c.Memory.SummaryBackend = "redis"
			c.Memory.RedisURL = ""
		}},
		{"postgres backend without dsn", func(c *Config) {
			c.Memory.SummaryBackend = "postgres"
			c.Memory.DBConnection = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
