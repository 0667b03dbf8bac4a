package advisor

import (
	"context"
	"fmt"

	"advisor/pkg/advisor/prompt"
	"advisor/pkg/logx"
)

// Service implements the advisory operations on top of a completion
// Client. The client is typically a middleware chain ending in a
// fallback cascade over the configured backends.
type Service struct {
	client      Client
	log         *logx.Logger
	maxTokens   int
	temperature float32
}

// NewService creates an advisory service over the given completion client.
func NewService(client Client, log *logx.Logger, maxTokens int, temperature float32) *Service {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Service{
		client:      client,
		log:         log,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (s *Service) complete(ctx context.Context, system, user string) (string, error) {
	req := NewCompletionRequest([]CompletionMessage{
		NewSystemMessage(system),
		NewUserMessage(user),
	})
	req.MaxTokens = s.maxTokens
	req.Temperature = s.temperature

	resp, err := s.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateIdeas produces business ideas for the given profile. When
// every backend fails it falls back to the built-in static list so the
// conversation can continue offline.
func (s *Service) GenerateIdeas(ctx context.Context, p Profile) ([]Idea, error) {
	raw, err := s.complete(ctx, prompt.SystemIdeas(p.Language),
		prompt.Ideas(p.Name, p.Location, p.Interests, p.Budget))
	if err == nil {
		ideas, parseErr := ParseIdeas(raw)
		if parseErr == nil {
			return ideas, nil
		}
		err = parseErr
	}

	s.log.Warn("idea generation failed, serving static ideas: %v", err)
	return StaticIdeas(), nil
}

// GeneratePlan produces a full business plan for the chosen idea.
func (s *Service) GeneratePlan(ctx context.Context, idea Idea, p Profile) (Plan, error) {
	raw, err := s.complete(ctx, prompt.SystemAdvisor(p.Language),
		prompt.Plan(idea.Title, p.Location, p.Budget))
	if err != nil {
		return Plan{}, fmt.Errorf("generate plan: %w", err)
	}
	return Plan{
		BusinessName: idea.Title,
		Full:         raw,
		Sections:     SplitPlanSections(raw),
	}, nil
}

// GeneratePlanSection produces one detailed plan section (1..10).
func (s *Service) GeneratePlanSection(ctx context.Context, n int, idea Idea, p Profile) (string, error) {
	userPrompt := prompt.PlanSection(n, idea.Title, p.Location, p.Name, p.Budget)
	if userPrompt == "" {
		return "", fmt.Errorf("plan section %d out of range", n)
	}
	raw, err := s.complete(ctx, prompt.SystemAdvisor(p.Language), userPrompt)
	if err != nil {
		return "", fmt.Errorf("generate plan section %d: %w", n, err)
	}
	return prompt.PlanSectionTitles[n] + "\n\n" + raw, nil
}

// GenerateResourceTopic produces one detailed resource topic (1..10).
func (s *Service) GenerateResourceTopic(ctx context.Context, n int, idea Idea, p Profile) (string, error) {
	userPrompt := prompt.ResourceTopic(n, idea.Title, p.Location)
	if userPrompt == "" {
		return "", fmt.Errorf("resource topic %d out of range", n)
	}
	raw, err := s.complete(ctx, prompt.SystemAdvisor(p.Language), userPrompt)
	if err != nil {
		return "", fmt.Errorf("generate resource topic %d: %w", n, err)
	}
	return prompt.ResourceTopicTitles[n] + "\n\n" + raw, nil
}

// FindFundingSchemes lists applicable schemes and loans for the idea.
func (s *Service) FindFundingSchemes(ctx context.Context, idea Idea, p Profile) (string, error) {
	raw, err := s.complete(ctx, prompt.SystemAdvisor(p.Language),
		prompt.Funding(idea.Title, p.Location, p.Budget))
	if err != nil {
		return "", fmt.Errorf("find funding schemes: %w", err)
	}
	return raw, nil
}

// AnalyzeLocation produces a general opportunity analysis of a place.
func (s *Service) AnalyzeLocation(ctx context.Context, location, language string) (string, error) {
	raw, err := s.complete(ctx, prompt.SystemAdvisor(language),
		prompt.AnalyzeLocation(location))
	if err != nil {
		return "", fmt.Errorf("analyze location: %w", err)
	}
	return raw, nil
}

// AnalyzeLocationForBusiness assesses one idea against one place.
func (s *Service) AnalyzeLocationForBusiness(ctx context.Context, idea Idea, p Profile) (string, error) {
	raw, err := s.complete(ctx, prompt.SystemAdvisor(p.Language),
		prompt.AnalyzeLocationForBusiness(idea.Title, p.Location))
	if err != nil {
		return "", fmt.Errorf("analyze location for business: %w", err)
	}
	return raw, nil
}

// Answer responds to an open question, grounded in the profile and an
// optional uploaded-document excerpt.
func (s *Service) Answer(ctx context.Context, question string, p Profile, ideaTitle, pdfExcerpt string) (string, error) {
	raw, err := s.complete(ctx, prompt.SystemAdvisor(p.Language),
		prompt.Answer(question, p.Name, p.Location, p.Interests, p.Budget, ideaTitle, pdfExcerpt))
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return raw, nil
}

// SummarizeDocument produces a short summary of uploaded document text.
func (s *Service) SummarizeDocument(ctx context.Context, excerpt, language string) (string, error) {
	raw, err := s.complete(ctx, prompt.SystemAdvisor(language),
		prompt.SummarizeDocument(excerpt))
	if err != nil {
		return "", fmt.Errorf("summarize document: %w", err)
	}
	return raw, nil
}
