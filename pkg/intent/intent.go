// Package intent provides best-effort classification and entity
// extraction over free text. Results are advisory: they are recorded in
// session history and logs, never used for routing. Routing stays
// deterministic on step and button value.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is a coarse classification tag for a free-text message.
type Intent string

const (
	IntentGreeting         Intent = "greeting"
	IntentGenerateBusiness Intent = "generate_business"
	IntentAskQuestion      Intent = "ask_question"
	IntentLocation         Intent = "location"
	IntentFunding          Intent = "funding"
	IntentGeneral          Intent = "general"
)

var (
	greetingWords = []string{"hi", "hello", "hey", "start", "namaste", "namaskar"}
	businessWords = []string{"business", "idea", "start", "entrepreneur", "plan", "startup"}
	questionWords = []string{"question", "ask", "help", "tell", "how"}
	locationWords = []string{"location", "place", "city", "area", "village", "near"}
	fundingWords  = []string{"fund", "money", "loan", "scheme", "grant", "investment"}

	tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)
	numberRe   = regexp.MustCompile(`\d[\d,]*`)
)

// Detect classifies a message. Priority order matters: a greeting that
// also mentions "business" is still a greeting.
func Detect(message string) Intent {
	lower := strings.ToLower(message)
	tokens := tokenize(lower)

	switch {
	case containsAny(tokens, greetingWords):
		return IntentGreeting
	case substringAny(lower, businessWords):
		return IntentGenerateBusiness
	case containsAny(tokens, questionWords):
		return IntentAskQuestion
	case containsAny(tokens, locationWords):
		return IntentLocation
	case containsAny(tokens, fundingWords):
		return IntentFunding
	default:
		return IntentGeneral
	}
}

// IsGreeting reports whether the message contains a greeting word.
func IsGreeting(message string) bool {
	return containsAny(tokenize(strings.ToLower(message)), greetingWords)
}

// Facts is the same-turn, ephemeral fact mapping extracted from a
// message. Zero values mean no candidate was found; absence is never an
// error.
type Facts struct {
	Location  string
	Budget    int
	Interests []string
	Category  string
}

// interestKeywords maps substrings to canonical interest names.
var interestKeywords = []struct {
	needles  []string
	interest string
}{
	{[]string{"cook", "food"}, "cooking"},
	{[]string{"sew", "tailor"}, "sewing"},
	{[]string{"dairy", "milk"}, "dairy"},
	{[]string{"farm", "agriculture"}, "farming"},
	{[]string{"beauty", "salon"}, "beauty"},
	{[]string{"craft", "art"}, "handicrafts"},
	{[]string{"teach", "tutor"}, "teaching"},
	{[]string{"shop", "retail"}, "retail"},
}

// interestCategories maps canonical interests to broad categories.
var interestCategories = map[string]string{
	"cooking":     "food",
	"sewing":      "textile",
	"dairy":       "agriculture",
	"farming":     "agriculture",
	"beauty":      "service",
	"handicrafts": "craft",
	"teaching":    "education",
	"retail":      "commerce",
}

// Extract pulls candidate facts out of a message.
func Extract(message string) Facts {
	lower := strings.ToLower(message)
	facts := Facts{}

	if m := numberRe.FindString(lower); m != "" {
		if n, err := strconv.Atoi(strings.ReplaceAll(m, ",", "")); err == nil {
			facts.Budget = n
		}
	}

	for _, kw := range interestKeywords {
		if substringAny(lower, kw.needles) {
			facts.Interests = append(facts.Interests, kw.interest)
		}
	}
	if len(facts.Interests) > 0 {
		facts.Category = CategorizeInterest(facts.Interests[0])
	}

	if loc := extractAfterPreposition(message); loc != "" {
		facts.Location = loc
	}

	return facts
}

// extractAfterPreposition grabs a capitalized word following "in",
// "at", "near", or "from" as a location candidate.
func extractAfterPreposition(message string) string {
	words := strings.Fields(message)
	for i := 0; i < len(words)-1; i++ {
		switch strings.ToLower(words[i]) {
		case "in", "at", "near", "from":
			next := strings.Trim(words[i+1], ".,!?")
			if next != "" && next[0] >= 'A' && next[0] <= 'Z' {
				return next
			}
		}
	}
	return ""
}

// CategorizeInterest maps a canonical interest to its broad category.
func CategorizeInterest(interest string) string {
	if cat, ok := interestCategories[strings.ToLower(interest)]; ok {
		return cat
	}
	return "general"
}

// Entities renders the facts as a flat mapping for history records.
func (f Facts) Entities() map[string]string {
	out := make(map[string]string)
	if f.Location != "" {
		out["location"] = f.Location
	}
	if f.Budget > 0 {
		out["budget"] = strconv.Itoa(f.Budget)
	}
	if len(f.Interests) > 0 {
		out["interests"] = strings.Join(f.Interests, ", ")
	}
	if f.Category != "" {
		out["category"] = f.Category
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func tokenize(lower string) []string {
	return tokenSplit.Split(lower, -1)
}

func containsAny(tokens []string, words []string) bool {
	for _, t := range tokens {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}

func substringAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
