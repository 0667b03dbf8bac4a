package advisor

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"advisor/pkg/advisor/adverr"
	"advisor/pkg/logx"
)

// retryingClient wraps a Client with classified retry logic. The backoff
// schedule depends on the classified error type, so rate limits wait
// longer than plain network blips and auth failures never retry.
type retryingClient struct {
	next Client
	log  *logx.Logger
}

// WithRetry returns a middleware that retries failed completions
// according to the per-error-type retry configuration.
func WithRetry(log *logx.Logger) Middleware {
	return func(next Client) Client {
		return &retryingClient{next: next, log: log}
	}
}

func (r *retryingClient) ModelName() string {
	return r.next.ModelName()
}

func (r *retryingClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	var lastErr *adverr.Error

	attempt := 0
	for {
		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = adverr.Classify(err)
		cfg := lastErr.GetRetryConfig()

		if !lastErr.IsRetryable() || attempt >= cfg.MaxRetries {
			break
		}

		delay := backoffDelay(&cfg, attempt)
		r.log.Warn("completion attempt %d against %s failed (%s), retrying in %s",
			attempt+1, r.next.ModelName(), lastErr.Type, delay)

		select {
		case <-ctx.Done():
			return CompletionResponse{}, ctx.Err()
		case <-time.After(delay):
		}
		attempt++
	}

	return CompletionResponse{}, fmt.Errorf("completion failed after %d attempts: %w", attempt+1, lastErr)
}

// backoffDelay computes the exponential backoff delay for the given attempt.
func backoffDelay(cfg *adverr.RetryConfig, attempt int) time.Duration {
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt)))
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}

	if cfg.Jitter && delay > 0 {
		// +/- 10% to avoid thundering herd on shared quotas.
		jitter := time.Duration(rand.Int63n(int64(delay)/5+1)) - delay/10 //nolint:gosec // Not security sensitive
		delay += jitter
		if delay < 0 {
			delay = cfg.InitialDelay
		}
	}

	return delay
}
