package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apphttp "fingenius/internal/http"
	"fingenius/internal/models"
	"fingenius/internal/services/dataloader"
	"fingenius/internal/services/metrics"
)

var loader *dataloader.DataLoader

// Initialize sets up the dashboard package with required dependencies
func Initialize(l *dataloader.DataLoader) {
	loader = l
}

// RegisterRoutes registers all dashboard routes
func RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", handleSummary)
	r.Get("/dashboard/expenses", handleExpenses)
	r.Get("/dashboard/investments", handleInvestments)
	r.Get("/dashboard/goals", handleGoals)
	r.Get("/dashboard/budgets", handleBudgets)
	r.Get("/dashboard/subscriptions", handleSubscriptions)
	r.Get("/dashboard/history", handleHistory)
	r.Get("/dashboard/insights", handleInsights)
}

// loadProfile resolves the profile a dashboard request names, writing the
// error response itself when it cannot
func loadProfile(w http.ResponseWriter, r *http.Request) (*models.FinancialProfile, bool) {
	p, err := loader.LoadProfile(r.Context(), apphttp.ProfileID(r))
	if err != nil {
		apphttp.Error(w, r, err)
		return nil, false
	}
	return p, true
}

// ExpenseSummary totals expenses per category
func ExpenseSummary(p *models.FinancialProfile) map[string]float64 {
	return models.NewExpenseSet(p.Expenses).SummaryByCategory()
}

func totalExpenses(p *models.FinancialProfile) float64 {
	return models.NewExpenseSet(p.Expenses).SumAmount()
}

func totalInvestment(p *models.FinancialProfile) float64 {
	total := 0.0
	for _, inv := range p.Investments {
		total += inv.Amount
	}
	return total
}

func handleSummary(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProfile(w, r)
	if !ok {
		return
	}

	var current any = map[string]any{}
	if m, ok := p.CurrentMonth(); ok {
		current = m
	}

	apphttp.WriteJSON(w, http.StatusOK, map[string]any{
		"profile":          p.Profile,
		"current_month":    current,
		"total_investment": totalInvestment(p),
		"total_expenses":   totalExpenses(p),
		"source":           p.Source,
	})
}

func handleExpenses(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProfile(w, r)
	if !ok {
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{
		"expenses": p.Expenses,
		"summary":  ExpenseSummary(p),
	})
}

func handleInvestments(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProfile(w, r)
	if !ok {
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{
		"investments":     p.Investments,
		"risk_profile":    p.RiskProfile,
		"recommendations": p.Recommendations,
	})
}

func handleGoals(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProfile(w, r)
	if !ok {
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"goals": p.Goals})
}

func handleBudgets(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProfile(w, r)
	if !ok {
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"budgets": p.Budgets})
}

func handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProfile(w, r)
	if !ok {
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"subscriptions": p.Subscriptions})
}

func handleHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProfile(w, r)
	if !ok {
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"history": p.MonthlyHistory})
}

// InsightsSummary is the headline card row above the insights list
type InsightsSummary struct {
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	Savings     float64 `json:"savings"`
	SavingsRate float64 `json:"savings_rate"`
}

// Summarize computes savings against the itemized expenses
func Summarize(p *models.FinancialProfile) InsightsSummary {
	income := p.Profile.MonthlyIncome
	expenses := totalExpenses(p)
	savings := income - expenses

	rate := 0.0
	if income > 0 {
		rate = savings / income * 100
	}
	return InsightsSummary{
		Income:      income,
		Expenses:    expenses,
		Savings:     savings,
		SavingsRate: metrics.RoundRate(rate),
	}
}

func handleInsights(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProfile(w, r)
	if !ok {
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{
		"insights": p.Insights,
		"summary":  Summarize(p),
	})
}
