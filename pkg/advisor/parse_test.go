package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `[{"title":"x"}]`, `[{"title":"x"}]`},
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"plain fence", "```\n[1,2]\n```", "[1,2]"},
		{"padded", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestParseIdeas(t *testing.T) {
	raw := "```json\n" + `[
		{"title": "Tiffin Service", "description": "Meals.", "investment_min": 5000,
		 "investment_max": 20000, "home_based": true, "competition_level": "Medium",
		 "skills": ["cooking"], "icon": "🍱"},
		{"title": "Tailoring", "description": "Stitching.", "investment_min": 10000,
		 "investment_max": 30000, "home_based": true, "competition_level": "Low"}
	]` + "\n```"

	ideas, err := ParseIdeas(raw)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, "Tiffin Service", ideas[0].Title)
	assert.True(t, ideas[0].HomeBased)
	assert.Equal(t, []string{"cooking"}, ideas[0].Skills)
	assert.Equal(t, 10000, ideas[1].InvestmentMin)
}

func TestParseIdeasRejectsGarbage(t *testing.T) {
	_, err := ParseIdeas("I'm sorry, I can't produce JSON today.")
	assert.Error(t, err)

	_, err = ParseIdeas("[]")
	assert.Error(t, err)
}

func TestSplitPlanSections(t *testing.T) {
	content := `1. Executive Summary
A tiffin service for office workers.
Low startup cost.

2. Market Analysis
Offices nearby need lunches.

## Financial Plan
Break even in four months.`

	sections := SplitPlanSections(content)
	require.Len(t, sections, 3)
	assert.Equal(t, "Executive Summary", sections[0].Title)
	assert.Contains(t, sections[0].Content, "Low startup cost.")
	assert.Equal(t, "Market Analysis", sections[1].Title)
	assert.Equal(t, "Financial Plan", sections[2].Title)
}

func TestSplitPlanSectionsNoHeadings(t *testing.T) {
	sections := SplitPlanSections("just a blob of text with no structure")
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].Title)
	assert.Equal(t, "just a blob of text with no structure", sections[0].Content)
}
