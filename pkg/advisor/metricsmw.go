package advisor

import (
	"context"
	"time"

	"advisor/pkg/advisor/adverr"
)

// MetricsRecorder receives one observation per completion attempt.
// Implemented by the Prometheus recorder; kept as an interface so the
// middleware carries no metrics dependency.
type MetricsRecorder interface {
	ObserveCompletion(model, sessionID string, promptTokens, completionTokens int,
		success bool, errorType string, duration time.Duration)
}

type sessionIDKey struct{}

// WithSessionID attaches the session id to the context so completion
// metrics can be attributed to the conversation that triggered them.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// SessionIDFromContext returns the attached session id, or "" when none.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return id
	}
	return ""
}

type metricsClient struct {
	next Client
	rec  MetricsRecorder
}

// WithMetrics returns a middleware that records completion counts,
// token usage, and latency per backend model and session.
func WithMetrics(rec MetricsRecorder) Middleware {
	return func(next Client) Client {
		return &metricsClient{next: next, rec: rec}
	}
}

func (m *metricsClient) ModelName() string {
	return m.next.ModelName()
}

func (m *metricsClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	start := time.Now()
	resp, err := m.next.Complete(ctx, req)
	duration := time.Since(start)

	sessionID := SessionIDFromContext(ctx)
	if err != nil {
		m.rec.ObserveCompletion(m.next.ModelName(), sessionID, 0, 0,
			false, adverr.TypeOf(err).String(), duration)
		return resp, err
	}

	m.rec.ObserveCompletion(m.next.ModelName(), sessionID,
		resp.PromptTokens, resp.CompletionTokens, true, "", duration)
	return resp, nil
}
