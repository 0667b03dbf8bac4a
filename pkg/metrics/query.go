package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// SessionUsage aggregates token spend for one conversation.
type SessionUsage struct {
	SessionID        string `json:"session_id"`
	Requests         int64  `json:"requests"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	TotalTokens      int64  `json:"total_tokens"`
}

// QueryService reads aggregated usage back out of Prometheus.
type QueryService struct {
	queryAPI v1.API
}

func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create Prometheus client: %w", err)
	}
	return &QueryService{queryAPI: v1.NewAPI(client)}, nil
}

// GetSessionUsage sums completion requests and tokens for a session
// across all backend models.
func (q *QueryService) GetSessionUsage(ctx context.Context, sessionID string) (*SessionUsage, error) {
	usage := &SessionUsage{SessionID: sessionID}

	requestsQuery := fmt.Sprintf(`sum(advisor_completion_requests_total{session_id=%q})`, sessionID)
	requests, err := q.scalar(ctx, requestsQuery)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	usage.Requests = requests

	promptQuery := fmt.Sprintf(`sum(advisor_completion_tokens_total{session_id=%q, type="prompt"})`, sessionID)
	usage.PromptTokens, err = q.scalar(ctx, promptQuery)
	if err != nil {
		return nil, fmt.Errorf("query prompt tokens: %w", err)
	}

	completionQuery := fmt.Sprintf(`sum(advisor_completion_tokens_total{session_id=%q, type="completion"})`, sessionID)
	usage.CompletionTokens, err = q.scalar(ctx, completionQuery)
	if err != nil {
		return nil, fmt.Errorf("query completion tokens: %w", err)
	}

	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	return usage, nil
}

// GetSessionUsageByModel breaks session usage down per backend model.
func (q *QueryService) GetSessionUsageByModel(ctx context.Context, sessionID string) (map[string]*SessionUsage, error) {
	modelsQuery := fmt.Sprintf(`group by (model) (advisor_completion_tokens_total{session_id=%q})`, sessionID)
	modelsResult, _, err := q.queryAPI.Query(ctx, modelsQuery, time.Now())
	if err != nil {
		return nil, fmt.Errorf("query models: %w", err)
	}

	var models []string
	if vector, ok := modelsResult.(model.Vector); ok {
		for _, sample := range vector {
			if name, ok := sample.Metric["model"]; ok {
				models = append(models, string(name))
			}
		}
	}

	result := make(map[string]*SessionUsage, len(models))
	for _, name := range models {
		usage := &SessionUsage{SessionID: sessionID}

		promptQuery := fmt.Sprintf(`sum(advisor_completion_tokens_total{session_id=%q, model=%q, type="prompt"})`, sessionID, name)
		usage.PromptTokens, err = q.scalar(ctx, promptQuery)
		if err != nil {
			return nil, fmt.Errorf("query prompt tokens for model %s: %w", name, err)
		}

		completionQuery := fmt.Sprintf(`sum(advisor_completion_tokens_total{session_id=%q, model=%q, type="completion"})`, sessionID, name)
		usage.CompletionTokens, err = q.scalar(ctx, completionQuery)
		if err != nil {
			return nil, fmt.Errorf("query completion tokens for model %s: %w", name, err)
		}

		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
		result[name] = usage
	}

	return result, nil
}

func (q *QueryService) scalar(ctx context.Context, query string) (int64, error) {
	result, _, err := q.queryAPI.Query(ctx, query, time.Now())
	if err != nil {
		return 0, err
	}
	if vector, ok := result.(model.Vector); ok && len(vector) > 0 {
		return int64(vector[0].Value), nil
	}
	return 0, nil
}
