// Package classifier holds the static tables that map raw spreadsheet columns
// to the display categories, icons and subscriptions shown on the dashboard.
package classifier

import (
	"strings"

	"fingenius/internal/models"
)

// Display categories
const (
	RentAndEMI    = "Rent & EMI"
	Insurance     = "Insurance"
	FoodAndDining = "Food & Dining"
	Travel        = "Travel"
	Entertainment = "Entertainment"
	Utilities     = "Utilities"
	Healthcare    = "Healthcare"
	Education     = "Education"
	Shopping      = "Shopping"
)

// SavingsColumn is the engineered column holding the monthly investment amount.
// It is never treated as an expense.
const SavingsColumn = "savings"

// DefaultIcon is used for categories without a dedicated icon
const DefaultIcon = "💰"

// ColumnCategory maps one raw column key to its display category
type ColumnCategory struct {
	Column  string
	Display string
}

// ExpenseColumns is the ordered mapping of engineered expense columns.
// Several columns may collapse into one display category; the order of first
// appearance is the order categories are reported in.
var ExpenseColumns = []ColumnCategory{
	{"rent", RentAndEMI},
	{"loan_repayment", RentAndEMI},
	{"insurance", Insurance},
	{"groceries", FoodAndDining},
	{"eating_out", FoodAndDining},
	{"transport", Travel},
	{"entertainment", Entertainment},
	{"utilities", Utilities},
	{"healthcare", Healthcare},
	{"education", Education},
	{"miscellaneous", Shopping},
}

// Icons per display category
var Icons = map[string]string{
	FoodAndDining: "🍔",
	Travel:        "🚗",
	Entertainment: "🎬",
	Shopping:      "🛍️",
	Utilities:     "💡",
	Healthcare:    "🏥",
	RentAndEMI:    "🏠",
	Insurance:     "🛡️",
	Education:     "📚",
}

// DisplayCategory returns the display category for a raw column key
func DisplayCategory(column string) (string, bool) {
	for _, cc := range ExpenseColumns {
		if cc.Column == column {
			return cc.Display, true
		}
	}
	return "", false
}

// DisplayOrder lists the distinct display categories in first-appearance order
func DisplayOrder() []string {
	seen := make(map[string]bool)
	var order []string
	for _, cc := range ExpenseColumns {
		if !seen[cc.Display] {
			seen[cc.Display] = true
			order = append(order, cc.Display)
		}
	}
	return order
}

// Icon returns the icon for a display category, or DefaultIcon
func Icon(category string) string {
	if icon, ok := Icons[category]; ok {
		return icon
	}
	return DefaultIcon
}

// Badge returns the short lower-case badge type for a display category,
// e.g. "Food & Dining" -> "food"
func Badge(category string) string {
	fields := strings.Fields(strings.ToLower(category))
	if len(fields) == 0 {
		return "other"
	}
	return fields[0]
}

// SubscriptionTemplate is a catalog entry emitted when its trigger category
// has current spend
type SubscriptionTemplate struct {
	Trigger        string
	Name           string
	Cost           float64
	Category       string
	Logo           string
	Active         bool
	Recommendation models.Advice
}

// SubscriptionCatalog is evaluated in order; every template whose trigger
// category has nonzero spend is emitted
var SubscriptionCatalog = []SubscriptionTemplate{
	{Entertainment, "Netflix", 649, "Entertainment", "🎬", true, models.AdviceKeep},
	{Entertainment, "Spotify", 119, "Music", "🎵", true, models.AdviceKeep},
	{Entertainment, "Hotstar", 499, "Entertainment", "⭐", true, models.AdviceCancel},
	{Shopping, "Amazon Prime", 299, "Shopping", "📦", true, models.AdviceKeep},
	{Utilities, "Google One", 130, "Cloud", "☁️", true, models.AdviceKeep},
	{Healthcare, "Gym Membership", 1500, "Health", "💪", false, models.AdviceCancel},
}

// DefaultSubscription is emitted when no catalog entry triggers
var DefaultSubscription = SubscriptionCatalog[0]

// SubscriptionsFor returns the catalog entries triggered by the given set of
// categories with spend, falling back to DefaultSubscription
func SubscriptionsFor(withSpend map[string]bool) []SubscriptionTemplate {
	var out []SubscriptionTemplate
	for _, tmpl := range SubscriptionCatalog {
		if withSpend[tmpl.Trigger] {
			out = append(out, tmpl)
		}
	}
	if len(out) == 0 {
		out = append(out, DefaultSubscription)
	}
	return out
}

// investmentTypes rotate across engineered rows with their assumed returns
var investmentTypes = []struct {
	Type   string
	Return float64
}{
	{"Stocks", 12.0},
	{"Mutual Funds", 10.0},
	{"Fixed Deposits", 6.5},
	{"Gold", 8.0},
}

// InvestmentType returns the rotating holding type and return for row i
func InvestmentType(i int) (string, float64) {
	it := investmentTypes[i%len(investmentTypes)]
	return it.Type, it.Return
}

// RiskProfileForAge buckets investor appetite by age
func RiskProfileForAge(age int) models.RiskLevel {
	switch {
	case age < 35:
		return models.RiskHigh
	case age < 50:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// RecommendationCatalog is the pool of products offered on the investments page
var RecommendationCatalog = []models.Recommendation{
	{ID: 1, Name: "Nifty 50 Index Fund", Type: "SIP", ExpectedReturns: "12-14%", Risk: models.RiskMedium, TimeHorizon: "5+ years", MinInvestment: 500,
		Description: "Diversified exposure to India's top 50 companies. Ideal for long-term wealth creation."},
	{ID: 2, Name: "HDFC Mid-Cap Fund", Type: "Mutual Fund", ExpectedReturns: "14-16%", Risk: models.RiskHigh, TimeHorizon: "7+ years", MinInvestment: 1000,
		Description: "Higher growth potential with mid-sized companies. Suitable for aggressive investors."},
	{ID: 3, Name: "SBI Fixed Deposit", Type: "Fixed Deposit", ExpectedReturns: "6.5-7%", Risk: models.RiskLow, TimeHorizon: "1-5 years", MinInvestment: 10000,
		Description: "Guaranteed returns with capital protection. Best for conservative investors."},
	{ID: 4, Name: "Axis Bluechip Fund", Type: "Mutual Fund", ExpectedReturns: "10-12%", Risk: models.RiskLow, TimeHorizon: "3+ years", MinInvestment: 500,
		Description: "Invests in large-cap, stable companies. Lower volatility with steady returns."},
	{ID: 5, Name: "PPF Account", Type: "Government Scheme", ExpectedReturns: "7.1%", Risk: models.RiskLow, TimeHorizon: "15 years", MinInvestment: 500,
		Description: "Tax-free returns with sovereign guarantee. Great for retirement planning."},
	{ID: 6, Name: "Parag Parikh Flexi Cap", Type: "Mutual Fund", ExpectedReturns: "13-15%", Risk: models.RiskMedium, TimeHorizon: "5+ years", MinInvestment: 1000,
		Description: "Flexible allocation across market caps. Good for balanced portfolios."},
}

// RecommendationsFor returns the whole catalog with products matching the
// risk profile first; relative order is otherwise preserved
func RecommendationsFor(risk models.RiskLevel) []models.Recommendation {
	out := make([]models.Recommendation, 0, len(RecommendationCatalog))
	for _, r := range RecommendationCatalog {
		if r.Risk == risk {
			out = append(out, r)
		}
	}
	for _, r := range RecommendationCatalog {
		if r.Risk != risk {
			out = append(out, r)
		}
	}
	return out
}
