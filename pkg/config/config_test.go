package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "en-IN", cfg.DefaultLanguage)
	assert.Equal(t, []string{"gemini", "groq"}, cfg.Providers)
	assert.Equal(t, ModelGeminiFlash, cfg.GeminiModel)
	assert.Equal(t, ModelGroqLlama, cfg.GroqModel)
	assert.Equal(t, 4096, cfg.MaxTokens)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("ADVISOR_PROVIDERS", "claude,ollama,static")
	t.Setenv("SESSION_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, []string{"claude", "ollama", "static"}, cfg.Providers)
	assert.Equal(t, "30m0s", cfg.SessionTTL.String())
}
