// Package gemini provides a Google Gemini backed completion client.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"advisor/pkg/advisor"
	"advisor/pkg/advisor/adverr"
)

// Client wraps the Google GenAI client to implement advisor.Client.
// One instance is shared across request goroutines, so the lazily
// created API client sits behind a mutex.
type Client struct {
	mu     sync.Mutex
	client *genai.Client
	apiKey string
	model  string
}

// New creates a Gemini client for the given model. The underlying API
// client is created lazily on first use because construction requires a
// context.
func New(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
	}
}

// ensureClient initializes the underlying API client exactly once. A
// failed creation is not cached; the next call retries.
func (g *Client) ensureClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, adverr.NewError(adverr.ErrorTypeTransient, fmt.Sprintf("failed to create Gemini client: %v", err))
	}
	g.client = client
	return client, nil
}

// ModelName returns the backend model identifier.
func (g *Client) ModelName() string {
	return g.model
}

// Complete implements advisor.Client.
func (g *Client) Complete(ctx context.Context, in advisor.CompletionRequest) (advisor.CompletionResponse, error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return advisor.CompletionResponse{}, err
	}

	contents, systemInstruction, err := convertMessages(in.Messages)
	if err != nil {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeBadPrompt, fmt.Sprintf("message conversion error: %v", err))
	}

	//nolint:gosec // MaxTokens validated at higher layer, overflow acceptable
	maxTokens := int32(in.MaxTokens)
	config := &genai.GenerateContentConfig{
		Temperature:     &in.Temperature,
		MaxOutputTokens: maxTokens,
	}

	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return advisor.CompletionResponse{}, adverr.Classify(fmt.Errorf("Gemini API call failed: %w", err))
	}
	if result == nil {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeEmptyResponse, "empty response from Gemini API")
	}

	content := result.Text()
	if content == "" {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeEmptyResponse, "Gemini returned no text")
	}

	resp := advisor.CompletionResponse{Content: content}
	if result.UsageMetadata != nil {
		resp.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.CompletionTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	return resp, nil
}

// convertMessages converts our message format to Gemini Content format,
// extracting system messages into a single system instruction.
func convertMessages(messages []advisor.CompletionMessage) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("message list cannot be empty")
	}

	var systemParts []string
	var contents []*genai.Content

	for i := range messages {
		msg := &messages[i]
		switch msg.Role {
		case advisor.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case advisor.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		case advisor.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			return nil, "", fmt.Errorf("unsupported role: %s", msg.Role)
		}
	}

	if len(contents) == 0 {
		return nil, "", fmt.Errorf("must have at least one non-system message")
	}

	return contents, strings.Join(systemParts, "\n\n"), nil
}
