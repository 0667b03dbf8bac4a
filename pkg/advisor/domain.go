package advisor

// Profile carries the facts accumulated about a user that ground
// advisory prompts. Zero values mean the fact is unknown.
type Profile struct {
	Name      string
	Location  string
	Interests string
	Category  string
	Budget    int
	Language  string
}

// Idea is one generated business suggestion.
type Idea struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	InvestmentMin       int      `json:"investment_min"`
	InvestmentMax       int      `json:"investment_max"`
	ActualRealisticCost string   `json:"actual_realistic_cost"`
	FundingSuggestion   string   `json:"funding_suggestion"`
	WhyThisLocation     string   `json:"why_this_location"`
	HomeBased           bool     `json:"home_based"`
	CompetitionLevel    string   `json:"competition_level"`
	Skills              []string `json:"skills"`
	SuccessProbability  string   `json:"success_probability"`
	Profitability       string   `json:"profitability"`
	Icon                string   `json:"icon"`
}

// PlanSection is one titled part of a generated business plan.
type PlanSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Plan is a generated business plan, kept both as full text and split
// into sections for structured rendering.
type Plan struct {
	BusinessName string        `json:"business_name"`
	Full         string        `json:"full"`
	Sections     []PlanSection `json:"sections"`
}

// staticIdeas is the last-resort idea list served when every configured
// provider fails. Investment figures are in rupees.
var staticIdeas = []Idea{
	{
		Title:               "Home-based Tiffin Service",
		Description:         "Prepare and deliver fresh home-cooked meals to office workers and students in your area.",
		InvestmentMin:       5000,
		InvestmentMax:       25000,
		ActualRealisticCost: "Around 15,000 for utensils, containers, and initial groceries",
		FundingSuggestion:   "Self-funded or a small Mudra Shishu loan",
		WhyThisLocation:     "Daily meal demand exists in every town with offices or colleges",
		HomeBased:           true,
		CompetitionLevel:    "Medium",
		Skills:              []string{"cooking", "time management"},
		SuccessProbability:  "High",
		Profitability:       "8,000-20,000 per month",
		Icon:                "🍱",
	},
	{
		Title:               "Tailoring and Alteration Shop",
		Description:         "Stitching, alterations, and custom clothing from home or a small rented space.",
		InvestmentMin:       10000,
		InvestmentMax:       40000,
		ActualRealisticCost: "Around 25,000 for a sewing machine, overlock machine, and materials",
		FundingSuggestion:   "Mudra Shishu loan or a self-help group loan",
		WhyThisLocation:     "Steady local demand for alterations and festival clothing",
		HomeBased:           true,
		CompetitionLevel:    "Medium",
		Skills:              []string{"sewing", "measurement"},
		SuccessProbability:  "High",
		Profitability:       "6,000-15,000 per month",
		Icon:                "🧵",
	},
	{
		Title:               "Small Grocery and Daily Needs Store",
		Description:         "A neighbourhood store stocking daily essentials, with UPI payments and home delivery.",
		InvestmentMin:       30000,
		InvestmentMax:       100000,
		ActualRealisticCost: "Around 60,000 for initial stock, shelving, and a weighing scale",
		FundingSuggestion:   "Mudra Kishor loan",
		WhyThisLocation:     "Daily essentials sell everywhere; proximity wins over supermarkets",
		HomeBased:           false,
		CompetitionLevel:    "High",
		Skills:              []string{"inventory", "customer service"},
		SuccessProbability:  "Medium",
		Profitability:       "10,000-30,000 per month",
		Icon:                "🏪",
	},
}

// StaticIdeas returns a copy of the built-in fallback idea list.
func StaticIdeas() []Idea {
	out := make([]Idea, len(staticIdeas))
	copy(out, staticIdeas)
	return out
}
