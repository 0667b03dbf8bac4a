// Package claude provides an Anthropic Claude backed completion client.
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"advisor/pkg/advisor"
	"advisor/pkg/advisor/adverr"
)

// Client wraps the Anthropic API client to implement advisor.Client.
type Client struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a Claude client for the given model.
func New(apiKey, model string) *Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client: client,
		model:  anthropic.Model(model),
	}
}

// ModelName returns the backend model identifier.
func (c *Client) ModelName() string {
	return string(c.model)
}

// Complete implements advisor.Client.
func (c *Client) Complete(ctx context.Context, in advisor.CompletionRequest) (advisor.CompletionResponse, error) {
	systemPrompt, alternating, err := ensureAlternation(in.Messages)
	if err != nil {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeBadPrompt, fmt.Sprintf("message preparation failed: %v", err))
	}

	messages := make([]anthropic.MessageParam, 0, len(alternating))
	for i := range alternating {
		msg := &alternating[i]
		messages = append(messages, anthropic.MessageParam{
			Role:    anthropic.MessageParamRole(msg.Role),
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(msg.Content)},
		})
	}

	params := anthropic.MessageNewParams{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   int64(in.MaxTokens),
		Temperature: anthropic.Float(float64(in.Temperature)),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{
			Text: systemPrompt,
			Type: "text",
		}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return advisor.CompletionResponse{}, adverr.Classify(fmt.Errorf("Claude API call failed: %w", err))
	}
	if resp == nil || len(resp.Content) == 0 {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeEmptyResponse, "empty response from Claude API")
	}

	var content strings.Builder
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return advisor.CompletionResponse{}, adverr.NewError(adverr.ErrorTypeEmptyResponse, "Claude returned no text")
	}

	return advisor.CompletionResponse{
		Content:          content.String(),
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}

// ensureAlternation prepares messages for Anthropic API requirements:
// system messages move to the top-level system parameter, consecutive
// user messages merge, and the sequence must start and end with user.
func ensureAlternation(messages []advisor.CompletionMessage) (string, []advisor.CompletionMessage, error) {
	if len(messages) == 0 {
		return "", nil, fmt.Errorf("message list cannot be empty")
	}

	var systemParts []string
	var rest []advisor.CompletionMessage
	for i := range messages {
		msg := &messages[i]
		if msg.Role == advisor.RoleSystem {
			systemParts = append(systemParts, msg.Content)
		} else {
			rest = append(rest, *msg)
		}
	}
	if len(rest) == 0 {
		return "", nil, fmt.Errorf("must have at least one non-system message")
	}

	var merged []advisor.CompletionMessage
	var userParts []string
	for i := range rest {
		msg := &rest[i]
		if msg.Role == advisor.RoleAssistant {
			if len(userParts) > 0 {
				merged = append(merged, advisor.CompletionMessage{
					Role:    advisor.RoleUser,
					Content: strings.Join(userParts, "\n\n"),
				})
				userParts = nil
			}
			merged = append(merged, *msg)
			continue
		}
		userParts = append(userParts, msg.Content)
	}
	if len(userParts) > 0 {
		merged = append(merged, advisor.CompletionMessage{
			Role:    advisor.RoleUser,
			Content: strings.Join(userParts, "\n\n"),
		})
	}

	if merged[0].Role != advisor.RoleUser {
		return "", nil, fmt.Errorf("first message must be user role, got: %s", merged[0].Role)
	}
	if merged[len(merged)-1].Role != advisor.RoleUser {
		return "", nil, fmt.Errorf("last message must be user role, got: %s", merged[len(merged)-1].Role)
	}

	return strings.Join(systemParts, "\n\n"), merged, nil
}
