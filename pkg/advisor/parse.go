package advisor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var sectionHeading = regexp.MustCompile(`^(\d+\.|##)`)

// StripCodeFence removes a surrounding markdown code fence from model
// output. Models frequently wrap JSON in ```json ... ``` despite being
// told not to.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (```json).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseIdeas decodes a model reply into idea records. The reply may be
// a bare JSON array or one wrapped in a code fence.
func ParseIdeas(raw string) ([]Idea, error) {
	cleaned := StripCodeFence(raw)

	var ideas []Idea
	if err := json.Unmarshal([]byte(cleaned), &ideas); err != nil {
		return nil, fmt.Errorf("decode ideas: %w", err)
	}
	if len(ideas) == 0 {
		return nil, fmt.Errorf("decode ideas: empty list")
	}
	return ideas, nil
}

// SplitPlanSections splits plan text into titled sections on numbered
// ("1.") or markdown ("##") headings. Text before the first heading is
// dropped; a reply with no headings yields a single untitled section.
func SplitPlanSections(content string) []PlanSection {
	var sections []PlanSection
	var current *PlanSection

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if sectionHeading.MatchString(trimmed) {
			if current != nil {
				current.Content = strings.TrimSpace(current.Content)
				sections = append(sections, *current)
			}
			current = &PlanSection{
				Title: strings.TrimSpace(sectionHeading.ReplaceAllString(trimmed, "")),
			}
			continue
		}
		if current != nil && trimmed != "" {
			current.Content += line + "\n"
		}
	}
	if current != nil {
		current.Content = strings.TrimSpace(current.Content)
		sections = append(sections, *current)
	}

	if len(sections) == 0 && strings.TrimSpace(content) != "" {
		sections = append(sections, PlanSection{Content: strings.TrimSpace(content)})
	}
	return sections
}
