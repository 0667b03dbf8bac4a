// Package providers assembles the configured completion backends into a
// single middleware-wrapped client with fallback.
package providers

import (
	"context"

	"advisor/pkg/advisor"
	"advisor/pkg/advisor/adverr"
	"advisor/pkg/advisor/internal/backends/claude"
	"advisor/pkg/advisor/internal/backends/gemini"
	"advisor/pkg/advisor/internal/backends/groq"
	"advisor/pkg/advisor/internal/backends/ollamachat"
	"advisor/pkg/config"
	"advisor/pkg/logx"
)

// Build constructs the completion client from the configured provider
// order. Backends without credentials are skipped with a warning. When
// nothing usable remains, a null client is returned so the service can
// still serve its static fallbacks.
func Build(cfg *config.Config, rec advisor.MetricsRecorder, log *logx.Logger) advisor.Client {
	var backends []advisor.Client

	for _, name := range cfg.Providers {
		switch name {
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				log.Warn("skipping gemini backend: GEMINI_API_KEY not set")
				continue
			}
			backends = append(backends, gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel))
		case "groq":
			if cfg.GroqAPIKey == "" {
				log.Warn("skipping groq backend: GROQ_API_KEY not set")
				continue
			}
			backends = append(backends, groq.New(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL))
		case "claude":
			if cfg.AnthropicAPIKey == "" {
				log.Warn("skipping claude backend: ANTHROPIC_API_KEY not set")
				continue
			}
			backends = append(backends, claude.New(cfg.AnthropicAPIKey, cfg.AnthropicModel))
		case "ollama":
			backends = append(backends, ollamachat.New(cfg.OllamaHost, cfg.OllamaModel))
		case "static":
			// Static fallback lives in the service layer, not the chain.
		default:
			log.Warn("unknown advisory provider %q ignored", name)
		}
	}

	var base advisor.Client
	if len(backends) == 0 {
		log.Warn("no advisory backends configured, static fallbacks only")
		base = nullClient{}
	} else {
		var err error
		base, err = advisor.NewFallbackClient(log, backends...)
		if err != nil {
			base = nullClient{}
		}
	}

	middlewares := []advisor.Middleware{advisor.WithRetry(log)}
	if rec != nil {
		middlewares = append([]advisor.Middleware{advisor.WithMetrics(rec)}, middlewares...)
	}
	return advisor.Chain(base, middlewares...)
}

// nullClient fails every completion with a non-retryable error.
type nullClient struct{}

func (nullClient) ModelName() string {
	return "none"
}

func (nullClient) Complete(_ context.Context, _ advisor.CompletionRequest) (advisor.CompletionResponse, error) {
	return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeAuth, "no advisory backend configured")
}
