// Package ollamachat provides a completion client backed by a local
// Ollama server, for running open-source models without API keys.
package ollamachat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"advisor/pkg/advisor"
	"advisor/pkg/advisor/adverr"
)

// Client wraps the Ollama API client to implement advisor.Client.
type Client struct {
	client  *api.Client
	model   string
	hostURL string
}

// New creates an Ollama client for the given model. hostURL should be
// the Ollama server URL (e.g. "http://localhost:11434").
func New(hostURL, model string) *Client {
	parsedURL, err := url.Parse(hostURL)
	if err != nil {
		parsedURL, _ = url.Parse("http://localhost:11434")
	}

	return &Client{
		client:  api.NewClient(parsedURL, http.DefaultClient),
		model:   model,
		hostURL: hostURL,
	}
}

// ModelName returns the backend model identifier.
func (o *Client) ModelName() string {
	return o.model
}

// Complete implements advisor.Client.
func (o *Client) Complete(ctx context.Context, in advisor.CompletionRequest) (advisor.CompletionResponse, error) {
	if len(in.Messages) == 0 {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeBadPrompt, "message list cannot be empty")
	}

	messages := make([]api.Message, 0, len(in.Messages))
	for i := range in.Messages {
		msg := &in.Messages[i]
		switch msg.Role {
		case advisor.RoleSystem, advisor.RoleUser, advisor.RoleAssistant:
			messages = append(messages, api.Message{
				Role:    string(msg.Role),
				Content: msg.Content,
			})
		default:
			return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeBadPrompt, fmt.Sprintf("unsupported role: %s", msg.Role))
		}
	}

	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": in.Temperature,
			"num_predict": in.MaxTokens,
		},
	}

	var response api.ChatResponse
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return advisor.CompletionResponse{}, adverr.Classify(fmt.Errorf("Ollama API call failed: %w", err))
	}

	if response.Message.Content == "" {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeEmptyResponse, "Ollama returned no text")
	}

	return advisor.CompletionResponse{
		Content:          response.Message.Content,
		PromptTokens:     response.Metrics.PromptEvalCount,
		CompletionTokens: response.Metrics.EvalCount,
	}, nil
}
