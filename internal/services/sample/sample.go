// Package sample provides the fixed illustrative profile served whenever no
// usable data exists, and whose lists back-fill empty derived fields.
package sample

import (
	"fingenius/internal/models"
	"fingenius/internal/services/classifier"
)

// Source marks profiles that came entirely from sample data
const Source = "sample"

func pct(v int) *int { return &v }

// Profile returns a fresh copy of the sample profile for the given user id.
// Each call allocates new slices, so callers may modify the result.
func Profile(userID string) *models.FinancialProfile {
	return &models.FinancialProfile{
		UserID: userID,
		Source: Source,
		Profile: models.UserProfile{
			Name:          "John Doe",
			Email:         "john@example.com",
			Age:           32,
			MonthlyIncome: 85000,
		},
		Expenses:        Expenses(),
		Investments:     Investments(),
		Recommendations: classifier.RecommendationsFor(models.RiskHigh),
		RiskProfile:     models.RiskHigh,
		Goals:           Goals(),
		MonthlyHistory:  MonthlyHistory(),
		Budgets:         Budgets(),
		Subscriptions:   Subscriptions(),
		Insights:        Insights(),
	}
}

// Expenses returns the sample expense list
func Expenses() []models.Expense {
	return []models.Expense{
		{Date: "2024-12-01", Category: "Food & Dining", Amount: 3500},
		{Date: "2024-12-01", Category: "Rent & EMI", Amount: 18000},
		{Date: "2024-12-05", Category: "Travel", Amount: 1200},
		{Date: "2024-12-10", Category: "Entertainment", Amount: 2000},
		{Date: "2024-12-15", Category: "Shopping", Amount: 1500},
		{Date: "2024-12-20", Category: "Utilities", Amount: 3500},
	}
}

// Investments returns the sample portfolio holdings
func Investments() []models.Investment {
	return []models.Investment{
		{Type: "Fixed Deposit", Amount: 13381, AnnualReturn: 6.0},
		{Type: "Mutual Fund", Amount: 17500, AnnualReturn: 12.0},
		{Type: "Stock", Amount: 22000, AnnualReturn: 15.0},
	}
}

// Goals returns the sample savings goals
func Goals() []models.Goal {
	return []models.Goal{
		{ID: 1, Name: "Emergency Fund", Target: 300000, Saved: 204000, Deadline: "2025-12-31", Icon: "🛡️"},
		{ID: 2, Name: "Vacation", Target: 150000, Saved: 75000, Deadline: "2025-06-30", Icon: "✈️"},
		{ID: 3, Name: "Car Purchase", Target: 1000000, Saved: 250000, Deadline: "2026-12-31", Icon: "🚗"},
	}
}

// MonthlyHistory returns six months of sample income and expense totals
func MonthlyHistory() []models.MonthlySummary {
	return []models.MonthlySummary{
		{Month: "Jul", Income: 82000, Expense: 42000, Investment: 20000},
		{Month: "Aug", Income: 84000, Expense: 38000, Investment: 25000},
		{Month: "Sep", Income: 85000, Expense: 45000, Investment: 22000},
		{Month: "Oct", Income: 83000, Expense: 41000, Investment: 24000},
		{Month: "Nov", Income: 88000, Expense: 48000, Investment: 30000},
		{Month: "Dec", Income: 85000, Expense: 44500, Investment: 28000},
	}
}

// Budgets returns the sample per-category budgets
func Budgets() []models.Budget {
	return []models.Budget{
		{ID: 1, Category: "Food & Dining", Budget: 6000, Spent: 3500, Icon: "🍔"},
		{ID: 2, Category: "Rent & EMI", Budget: 18000, Spent: 18000, Icon: "🏠"},
		{ID: 3, Category: "Travel", Budget: 3000, Spent: 1200, Icon: "🚗"},
		{ID: 4, Category: "Entertainment", Budget: 1500, Spent: 2000, Icon: "🎬"},
		{ID: 5, Category: "Shopping", Budget: 5000, Spent: 1500, Icon: "🛍️"},
		{ID: 6, Category: "Utilities", Budget: 4000, Spent: 3500, Icon: "💡"},
	}
}

// Subscriptions returns the sample recurring charges
func Subscriptions() []models.Subscription {
	return []models.Subscription{
		{ID: 1, Name: "Netflix", Cost: 649, NextRenewal: "2025-01-15", Category: "Entertainment", Logo: "🎬", Active: true, Recommendation: models.AdviceKeep},
		{ID: 2, Name: "Spotify", Cost: 119, NextRenewal: "2025-01-20", Category: "Music", Logo: "🎵", Active: true, Recommendation: models.AdviceKeep},
		{ID: 3, Name: "Gym", Cost: 1500, NextRenewal: "2025-01-01", Category: "Health", Logo: "💪", Active: false, Recommendation: models.AdviceCancel},
	}
}

// Insights returns the sample insight cards
func Insights() []models.Insight {
	return []models.Insight{
		{ID: 1, Title: "Great savings!", Description: "You saved 20% of your income this month.", Type: models.InsightPositive, Value: "20%", Trend: "up"},
		{ID: 2, Title: "Entertainment over budget", Description: "You exceeded your entertainment budget by ₹500.", Type: models.InsightNegative, Value: "-₹500", Trend: "up", Percentage: pct(33)},
	}
}

// Fill replaces every empty list-valued field of p with its sample equivalent,
// so no top-level list is ever empty or null
func Fill(p *models.FinancialProfile) {
	if len(p.Expenses) == 0 {
		p.Expenses = Expenses()
	}
	if len(p.Investments) == 0 {
		p.Investments = Investments()
	}
	if p.RiskProfile == "" {
		p.RiskProfile = classifier.RiskProfileForAge(p.Profile.Age)
	}
	if len(p.Recommendations) == 0 {
		p.Recommendations = classifier.RecommendationsFor(p.RiskProfile)
	}
	if len(p.Goals) == 0 {
		p.Goals = Goals()
	}
	if len(p.MonthlyHistory) == 0 {
		p.MonthlyHistory = MonthlyHistory()
	}
	if len(p.Budgets) == 0 {
		p.Budgets = Budgets()
	}
	if len(p.Subscriptions) == 0 {
		p.Subscriptions = Subscriptions()
	}
	if len(p.Insights) == 0 {
		p.Insights = Insights()
	}
}
