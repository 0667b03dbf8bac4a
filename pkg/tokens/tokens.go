// Package tokens counts and truncates text by model tokens so document
// excerpts fit inside a prompt budget.
package tokens

import (
	"fmt"
	"unicode/utf8"

	"github.com/tiktoken-go/tokenizer"
)

// Counter counts tokens with a GPT-4 codec. All backends we prompt use
// comparable tokenization, so one encoding is close enough for
// budgeting.
type Counter struct {
	codec tokenizer.Codec
}

func NewCounter() (*Counter, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("create tokenizer codec: %w", err)
	}
	return &Counter{codec: codec}, nil
}

// Count returns the token count for text. Falls back to a four
// characters per token estimate when the codec is unavailable.
func (c *Counter) Count(text string) int {
	if c == nil || c.codec == nil {
		return len(text) / 4
	}
	n, err := c.codec.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return n
}

// WithinLimit reports whether text fits in limit tokens.
func (c *Counter) WithinLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// Truncate cuts text down to roughly limit tokens. The cut is by
// characters, proportional to the overage, not on exact token
// boundaries.
func (c *Counter) Truncate(text string, limit int) string {
	current := c.Count(text)
	if current <= limit {
		return text
	}

	ratio := float64(limit) / float64(current)
	charLimit := int(float64(len(text)) * ratio * 0.9)
	if charLimit >= len(text) {
		return text
	}
	if charLimit < 0 {
		charLimit = 0
	}
	// Back up to a rune boundary so multibyte text is never split
	// mid-character.
	for charLimit > 0 && !utf8.RuneStart(text[charLimit]) {
		charLimit--
	}
	return text[:charLimit] + "..."
}
