package models

import (
	"encoding/json"
	"time"
)

// FinancialProfile is the dashboard-ready snapshot for one user or upload.
// It is built once per ingestion and handed to callers as an immutable value.
type FinancialProfile struct {
	UserID      string    `json:"user_id"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`

	Profile         UserProfile      `json:"profile"`
	Expenses        []Expense        `json:"expenses"`
	Investments     []Investment     `json:"investments"`
	Recommendations []Recommendation `json:"recommendations"`
	RiskProfile     RiskLevel        `json:"risk_profile"`
	Goals           []Goal           `json:"goals"`
	MonthlyHistory  []MonthlySummary `json:"monthly_history"`
	Budgets         []Budget         `json:"budgets"`
	Subscriptions   []Subscription   `json:"subscriptions"`
	Insights        []Insight        `json:"insights"`
}

// UserProfile holds the personal details shown in the dashboard header
type UserProfile struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	MonthlyIncome float64 `json:"monthly_income"`
	Age           int     `json:"age"`
	Occupation    string  `json:"occupation,omitempty"`
}

// Expense is a single spend entry. Engineered datasets produce synthetic
// entries dated across the current month; transaction logs carry real dates.
type Expense struct {
	ID          string  `json:"id,omitempty"`
	Date        string  `json:"date"` // "2006-01-02"
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Badge       string  `json:"badge,omitempty"`
	Amount      float64 `json:"amount"`
}

// Investment is a holding with its expected annual return (percent)
type Investment struct {
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	AnnualReturn float64 `json:"annual_return"`
}

// RiskLevel classifies investments and investor appetite
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Recommendation is a catalog product suggested for a risk profile
type Recommendation struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	ExpectedReturns string    `json:"expected_returns"`
	Risk            RiskLevel `json:"risk"`
	TimeHorizon     string    `json:"time_horizon"`
	MinInvestment   float64   `json:"min_investment"`
	Description     string    `json:"description"`
}

// Goal is a savings target
type Goal struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Target   float64 `json:"target"`
	Saved    float64 `json:"saved"`
	Deadline string  `json:"deadline"`
	Icon     string  `json:"icon,omitempty"`
}

// Remaining returns how much is still missing to reach the target
func (g Goal) Remaining() float64 {
	return g.Target - g.Saved
}

// MonthlySummary is one period of the income/expense/investment history
type MonthlySummary struct {
	Month      string  `json:"month"`
	Income     float64 `json:"income"`
	Expense    float64 `json:"expense"`
	Investment float64 `json:"investment"`
}

// Budget compares a display category's historical average with current spend
type Budget struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
	Budget   int64  `json:"budget"`
	Spent    int64  `json:"spent"`
	Icon     string `json:"icon"`
}

// Advice is the keep/cancel verdict attached to a subscription.
// The zero value encodes as JSON null.
type Advice string

const (
	AdviceNone   Advice = ""
	AdviceKeep   Advice = "keep"
	AdviceCancel Advice = "cancel"
)

// MarshalJSON writes null for AdviceNone
func (a Advice) MarshalJSON() ([]byte, error) {
	if a == AdviceNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}

// UnmarshalJSON accepts null as AdviceNone
func (a *Advice) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = AdviceNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Advice(s)
	return nil
}

// Subscription is a recurring charge
type Subscription struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Cost           float64 `json:"cost"`
	NextRenewal    string  `json:"next_renewal"`
	Category       string  `json:"category"`
	Logo           string  `json:"logo"`
	Active         bool    `json:"active"`
	Recommendation Advice  `json:"recommendation"`
}

// InsightType is the tone of an insight card
type InsightType string

const (
	InsightPositive InsightType = "positive"
	InsightNegative InsightType = "negative"
	InsightWarning  InsightType = "warning"
	InsightTip      InsightType = "tip"
)

// Insight is a short rule-generated observation
type Insight struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        InsightType `json:"type"`
	Value       string      `json:"value,omitempty"`
	Trend       string      `json:"trend,omitempty"` // "up", "down"
	Percentage  *int        `json:"percentage,omitempty"`
}

// CurrentMonth returns the latest history entry, if any
func (p *FinancialProfile) CurrentMonth() (MonthlySummary, bool) {
	if len(p.MonthlyHistory) == 0 {
		return MonthlySummary{}, false
	}
	return p.MonthlyHistory[len(p.MonthlyHistory)-1], true
}
