package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHAT_FREE_DAILY_LIMIT", "")
	t.Setenv("OTEL_ENABLED", "")

	cfg := Load()

	assert.Equal(t, 10, cfg.Chat.FreeDailyLimit)
	assert.Equal(t, 5*1024*1024, cfg.Chat.MaxImageBytes)
	assert.False(t, cfg.App.OtelEnabled)
	assert.Equal(t, "ollama", cfg.Ai.LLMProvider)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHAT_FREE_DAILY_LIMIT", "3")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("APP_PORT", "8080")

	cfg := Load()

	assert.Equal(t, 3, cfg.Chat.FreeDailyLimit)
	assert.True(t, cfg.App.OtelEnabled)
	assert.InDelta(t, 0.2, cfg.Ai.Temperature, 0.0001)
	assert.Equal(t, "8080", cfg.App.Port)
}

func TestEnvHelpersFallbackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")

	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.True(t, getEnvAsBool("X_BOOL", true))
}
