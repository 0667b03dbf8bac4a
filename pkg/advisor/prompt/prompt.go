// Package prompt renders the advisory prompts sent to text-generation
// backends. All builders are pure string assembly; no backend calls.
package prompt

import (
	"fmt"
	"strings"
)

// PlanSectionTitles lists the ten detailed plan sections, keyed 1..10.
var PlanSectionTitles = map[int]string{
	1:  "🧭 Executive Summary",
	2:  "💡 Business Description",
	3:  "📊 Market Analysis",
	4:  "🛒 Products & Services",
	5:  "📣 Marketing Strategy",
	6:  "⚙️ Operations Plan",
	7:  "👥 Organization & Management",
	8:  "💰 Financial Plan",
	9:  "📅 Implementation Timeline",
	10: "📎 Resources & Support",
}

// ResourceTopicTitles lists the ten resource topics, keyed 1..10.
var ResourceTopicTitles = map[int]string{
	1:  "🗺️ Basic Location Details",
	2:  "🏙️ Demographics & Market Profile",
	3:  "🧭 Competitors & Market Density",
	4:  "🚗 Transportation & Accessibility",
	5:  "🏢 Infrastructure & Utilities",
	6:  "💼 Labor & Workforce Availability",
	7:  "📜 Legal & Regulatory Environment",
	8:  "🌐 Digital & Technology Infrastructure",
	9:  "💰 Financial & Banking Services",
	10: "🤝 Community & Support Networks",
}

// LanguageInstruction tells the model which language to answer in.
func LanguageInstruction(language string) string {
	switch language {
	case "hi-IN":
		return "Respond in HINDI only."
	case "mr-IN":
		return "Respond in MARATHI only."
	default:
		return "Respond in ENGLISH only."
	}
}

// SystemAdvisor is the system prompt for open-ended advisory answers.
func SystemAdvisor(language string) string {
	return "You are Startup Sathi, a friendly, knowledgeable business advisor " +
		"for rural women entrepreneurs in India. You give practical, " +
		"location-specific advice in simple words. " + LanguageInstruction(language)
}

// SystemIdeas is the system prompt for structured idea generation.
func SystemIdeas(language string) string {
	return "You are an experienced business advisor for rural women entrepreneurs " +
		"in India. You provide practical, location-specific advice. Always respond " +
		"in valid JSON format. " + LanguageInstruction(language)
}

// Ideas asks for five business ideas matching the user's profile,
// returned as a JSON array.
func Ideas(name, location, interests string, budget int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an experienced business consultant analyzing %s, India for %s.\n", location, orDefault(name, "a new entrepreneur"))
	fmt.Fprintf(&b, "The user has a budget of ₹%d and is interested in %q.\n\n", budget, interests)
	fmt.Fprintf(&b, "Generate 5 businesses STRICTLY matching the interest %q. For EACH provide JSON with:\n", interests)
	b.WriteString(`- title
- description (2-3 sentences, specific to the location)
- investment_min (number, rupees)
- investment_max (number, rupees)
- actual_realistic_cost (short text)
- funding_suggestion (a matching government scheme or loan)
- why_this_location (why it works there)
- home_based (true/false)
- competition_level (Low/Medium/High)
- skills (array of strings)
- success_probability (Low/Medium/High)
- profitability (expected monthly income range)
- icon (one emoji)

Format as JSON array ONLY. No markdown, no explanation.`)
	return b.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Plan asks for a complete numbered business plan for the chosen idea.
func Plan(ideaTitle, location string, budget int) string {
	return fmt.Sprintf(`Create a comprehensive business plan for: %s in %s, India with a budget of ₹%d.

Structure it as ten numbered sections:
1. Executive Summary
2. Business Description
3. Market Analysis
4. Products & Services
5. Marketing Strategy
6. Operations Plan
7. Organization & Management
8. Financial Plan
9. Implementation Timeline
10. Resources & Support

Each section heading must start with its number followed by a period. Keep advice practical for a first-time woman entrepreneur.`, ideaTitle, location, budget)
}

// PlanSection asks for one detailed plan section by number (1..10).
// Returns an empty string when n is out of range.
func PlanSection(n int, ideaTitle, location, name string, budget int) string {
	title, ok := PlanSectionTitles[n]
	if !ok {
		return ""
	}
	return fmt.Sprintf(`You are an experienced business consultant for women entrepreneurs in India.
Write the %q section of a business plan for %s in %s, prepared for %s with a budget of ₹%d.
Make it detailed (400-600 words), specific to the location, and actionable this month.`,
		stripEmoji(title), ideaTitle, location, orDefault(name, "the founder"), budget)
}

// ResourceTopic asks for one detailed local-resource topic by number (1..10).
// Returns an empty string when n is out of range.
func ResourceTopic(n int, ideaTitle, location string) string {
	title, ok := ResourceTopicTitles[n]
	if !ok {
		return ""
	}
	return fmt.Sprintf(`You are a detailed business resource analyst for women entrepreneurs in India.
Provide an in-depth %q report for starting %s in %s, India.
Cover concrete names, places, and numbers where possible (600-800 words).`,
		stripEmoji(title), ideaTitle, location)
}

// Funding asks for applicable government schemes and loans.
func Funding(ideaTitle, location string, budget int) string {
	return fmt.Sprintf(`You are a government schemes expert for women entrepreneurs in India.
List the schemes, subsidies, and loans applicable for starting %s in %s with a budget of ₹%d.
For each: name, who qualifies, amount, and how to apply. Include Mudra, Stand-Up India, and state schemes where relevant.`,
		ideaTitle, location, budget)
}

// AnalyzeLocation asks for a general business-opportunity analysis of a place.
func AnalyzeLocation(location string) string {
	return fmt.Sprintf(`Analyze %s, India for business opportunities for women entrepreneurs.
Cover: local economy, demand patterns, competition, infrastructure, and three promising business types with reasons.`,
		location)
}

// AnalyzeLocationForBusiness asks how well a specific idea fits a place.
func AnalyzeLocationForBusiness(ideaTitle, location string) string {
	return fmt.Sprintf(`You are a location analytics expert analyzing %s, India for starting a %q business.
Assess: target customers nearby, competitor density, footfall, supply chains, and a final suitability verdict with reasons.`,
		location, ideaTitle)
}

// Answer builds a grounded question-answering prompt from the user's
// question, accumulated profile facts, and an optional document excerpt.
func Answer(question, name, location, interests string, budget int, ideaTitle, pdfExcerpt string) string {
	var b strings.Builder
	b.WriteString("Known facts about the user:\n")
	if name != "" {
		fmt.Fprintf(&b, "- Name: %s\n", name)
	}
	if location != "" {
		fmt.Fprintf(&b, "- Location: %s\n", location)
	}
	if interests != "" {
		fmt.Fprintf(&b, "- Interests: %s\n", interests)
	}
	if budget > 0 {
		fmt.Fprintf(&b, "- Budget: ₹%d\n", budget)
	}
	if ideaTitle != "" {
		fmt.Fprintf(&b, "- Chosen business idea: %s\n", ideaTitle)
	}
	if pdfExcerpt != "" {
		fmt.Fprintf(&b, "\nThe user uploaded a document. Relevant excerpt:\n%s\n", pdfExcerpt)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\nAnswer helpfully and concretely.", question)
	return b.String()
}

// SummarizeDocument asks for a short friendly summary of an uploaded document.
func SummarizeDocument(excerpt string) string {
	return fmt.Sprintf(`You are reading a document uploaded by a woman entrepreneur.
Provide a brief, friendly summary of what it contains and how it could help her business.

Document text:
%s`, excerpt)
}

func stripEmoji(title string) string {
	fields := strings.Fields(title)
	if len(fields) > 1 {
		return strings.Join(fields[1:], " ")
	}
	return title
}
