package advisor

import (
	"context"
	"fmt"
	"strings"

	"advisor/pkg/advisor/adverr"
	"advisor/pkg/logx"
)

// fallbackClient tries each configured backend in order until one
// returns a usable completion. Auth and bad-prompt failures on one
// backend do not stop the cascade; the next backend may still succeed.
type fallbackClient struct {
	clients []Client
	log     *logx.Logger
}

// NewFallbackClient builds a client that cascades over the given
// backends in order. At least one backend is required.
func NewFallbackClient(log *logx.Logger, clients ...Client) (Client, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("at least one backend is required")
	}
	if len(clients) == 1 {
		return clients[0], nil
	}
	return &fallbackClient{clients: clients, log: log}, nil
}

func (f *fallbackClient) ModelName() string {
	names := make([]string, len(f.clients))
	for i, c := range f.clients {
		names[i] = c.ModelName()
	}
	return strings.Join(names, ",")
}

func (f *fallbackClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	var lastErr error

	for i, client := range f.clients {
		resp, err := client.Complete(ctx, req)
		if err == nil {
			if i > 0 {
				f.log.Info("completion served by fallback backend %s", client.ModelName())
			}
			return resp, nil
		}

		lastErr = err
		f.log.Warn("backend %s failed (%s), trying next", client.ModelName(), adverr.TypeOf(err))

		if ctx.Err() != nil {
			return CompletionResponse{}, ctx.Err()
		}
	}

	return CompletionResponse{}, fmt.Errorf("all %d backends failed: %w", len(f.clients), lastErr)
}
