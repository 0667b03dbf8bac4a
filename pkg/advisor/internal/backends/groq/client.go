// Package groq provides a Groq backed completion client. Groq exposes
// an OpenAI-compatible API, so this wraps the official OpenAI Go
// package pointed at the Groq base URL.
package groq

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"advisor/pkg/advisor"
	"advisor/pkg/advisor/adverr"
)

// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Client wraps the OpenAI client configured for Groq to implement advisor.Client.
type Client struct {
	client openai.Client
	model  string
}

// New creates a Groq client for the given model. An empty baseURL uses
// the default Groq endpoint.
func New(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &Client{
		client: client,
		model:  model,
	}
}

// ModelName returns the backend model identifier.
func (c *Client) ModelName() string {
	return c.model
}

// Complete implements advisor.Client using the Chat Completions API.
func (c *Client) Complete(ctx context.Context, in advisor.CompletionRequest) (advisor.CompletionResponse, error) {
	if len(in.Messages) == 0 {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeBadPrompt, "message list cannot be empty")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(in.Messages))
	for i := range in.Messages {
		msg := &in.Messages[i]
		switch msg.Role {
		case advisor.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case advisor.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case advisor.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeBadPrompt, fmt.Sprintf("unsupported role: %s", msg.Role))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(float64(in.Temperature)),
		MaxTokens:   openai.Int(int64(in.MaxTokens)),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return advisor.CompletionResponse{}, adverr.Classify(fmt.Errorf("Groq API call failed: %w", err))
	}
	if resp == nil || len(resp.Choices) == 0 {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeEmptyResponse, "empty response from Groq API")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeEmptyResponse, "Groq returned no text")
	}

	return advisor.CompletionResponse{
		Content:          content,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}, nil
}
