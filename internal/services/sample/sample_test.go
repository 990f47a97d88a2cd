package sample

import (
	"testing"

	"fingenius/internal/models"
)

func TestProfileIsFreshCopy(t *testing.T) {
	a := Profile("a")
	a.Expenses[0].Amount = 1
	a.Goals = nil

	b := Profile("b")
	if b.Expenses[0].Amount == 1 {
		t.Error("Mutating one sample profile changed another")
	}
	if len(b.Goals) == 0 {
		t.Error("Sample goals should not be empty")
	}
	if b.UserID != "b" || b.Source != Source {
		t.Errorf("UserID = %q, Source = %q", b.UserID, b.Source)
	}
}

func TestProfileListsNonEmpty(t *testing.T) {
	p := Profile("x")
	lists := map[string]int{
		"expenses":        len(p.Expenses),
		"investments":     len(p.Investments),
		"recommendations": len(p.Recommendations),
		"goals":           len(p.Goals),
		"monthly_history": len(p.MonthlyHistory),
		"budgets":         len(p.Budgets),
		"subscriptions":   len(p.Subscriptions),
		"insights":        len(p.Insights),
	}
	for name, n := range lists {
		if n == 0 {
			t.Errorf("sample %s is empty", name)
		}
	}
}

func TestFill(t *testing.T) {
	t.Run("empty profile", func(t *testing.T) {
		p := &models.FinancialProfile{Profile: models.UserProfile{Age: 55}}
		Fill(p)

		if p.RiskProfile != models.RiskLow {
			t.Errorf("RiskProfile = %q, want low for age 55", p.RiskProfile)
		}
		if len(p.Recommendations) == 0 || p.Recommendations[0].Risk != models.RiskLow {
			t.Errorf("Recommendations should lead with low-risk products: %+v", p.Recommendations)
		}
		if len(p.Budgets) == 0 || len(p.Subscriptions) == 0 || len(p.Insights) == 0 || len(p.Goals) == 0 {
			t.Error("Fill left a list empty")
		}
	})

	t.Run("existing lists kept", func(t *testing.T) {
		goals := []models.Goal{{ID: 1, Name: "House"}}
		p := &models.FinancialProfile{Goals: goals, RiskProfile: models.RiskMedium}
		Fill(p)

		if len(p.Goals) != 1 || p.Goals[0].Name != "House" {
			t.Errorf("Goals replaced: %+v", p.Goals)
		}
		if p.RiskProfile != models.RiskMedium {
			t.Errorf("RiskProfile overwritten: %q", p.RiskProfile)
		}
	})
}
