// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Model name constants for the supported advisory providers.
const (
	ModelGeminiFlash  = "gemini-2.0-flash-exp"
	ModelGroqLlama    = "llama-3.3-70b-versatile"
	ModelClaudeSonnet = "claude-3-5-sonnet-latest"
	ModelOllamaLlama  = "llama3.2"
)

// Config holds all runtime settings. Every field has an env tag; defaults
// make a bare environment start a working server with the static provider.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
	DefaultLanguage string        `env:"DEFAULT_LANGUAGE" envDefault:"en-IN"`

	// Providers is the fallback order for advisory text generation.
	// Entries without credentials are skipped at startup.
	Providers []string `env:"ADVISOR_PROVIDERS" envSeparator:"," envDefault:"gemini,groq"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-exp"`

	GroqAPIKey  string `env:"GROQ_API_KEY"`
	GroqModel   string `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	GroqBaseURL string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-latest"`

	OllamaHost  string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaModel string `env:"OLLAMA_MODEL" envDefault:"llama3.2"`

	MaxTokens   int     `env:"ADVISOR_MAX_TOKENS" envDefault:"4096"`
	Temperature float32 `env:"ADVISOR_TEMPERATURE" envDefault:"0.7"`

	NominatimURL string `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org"`
	OverpassURL  string `env:"OVERPASS_URL" envDefault:"https://overpass-api.de/api/interpreter"`

	PDFTokenLimit int `env:"PDF_TOKEN_LIMIT" envDefault:"2000"`

	// PrometheusURL enables the per-session usage endpoint when set.
	PrometheusURL string `env:"PROMETHEUS_URL"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine; explicit env vars always win.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
