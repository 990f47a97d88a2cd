package metrics

import (
	"fmt"
	"math"
	"strings"

	"fingenius/internal/models"
)

const (
	healthySavingsRate = 20.0
	lowSavingsRate     = 5.0
	trendThreshold     = 20.0
	trendMinSpend      = 1000.0
	investableSavings  = 10000.0
	maxNamedSubs       = 3
)

type insightInput struct {
	Income        float64
	Savings       float64
	Stats         []categoryStat
	Subscriptions []models.Subscription
	Goals         []models.Goal
}

func intPtr(v int) *int { return &v }

// buildInsights evaluates each rule independently; rules fire in a fixed order
func buildInsights(in insightInput) []models.Insight {
	var insights []models.Insight
	add := func(ins models.Insight) {
		ins.ID = len(insights) + 1
		insights = append(insights, ins)
	}

	// Savings rate
	rate := 0.0
	if in.Income > 0 {
		rate = in.Savings / in.Income * 100
	}
	switch {
	case rate > healthySavingsRate:
		add(models.Insight{
			Title: "Great savings progress!",
			Description: fmt.Sprintf("You've saved %s this month, keeping a healthy savings rate of %.1f%%. Keep it up!",
				formatAmount(in.Savings), rate),
			Type:       models.InsightPositive,
			Trend:      "up",
			Percentage: intPtr(int(rate - healthySavingsRate)),
		})
	case rate < lowSavingsRate:
		add(models.Insight{
			Title:       "Low savings rate",
			Description: "Your savings are lower than recommended (20%). Review your discretionary spending.",
			Type:        models.InsightWarning,
			Value:       fmt.Sprintf("%.1f%% rate", rate),
		})
	}

	// Category spend against its average
	for _, s := range in.Stats {
		if s.Average <= 0 || s.Spent <= trendMinSpend {
			continue
		}
		diff := PercentChange(s.Spent, s.Average)
		switch {
		case diff > trendThreshold:
			add(models.Insight{
				Title: s.Category + " expenses increased",
				Description: fmt.Sprintf("Your %s expenses went up by %d%% compared to your average. Consider cutting back.",
					s.Category, int(diff)),
				Type:       models.InsightNegative,
				Trend:      "up",
				Percentage: intPtr(int(diff)),
			})
		case diff < -trendThreshold:
			drop := int(math.Abs(diff))
			add(models.Insight{
				Title: s.Category + " expenses down",
				Description: fmt.Sprintf("Your %s expenses decreased by %d%% this month. Great job optimizing!",
					s.Category, drop),
				Type:       models.InsightPositive,
				Trend:      "down",
				Percentage: intPtr(drop),
			})
		}
	}

	// Subscriptions flagged for cancellation
	var cancelTotal float64
	var names []string
	for _, sub := range in.Subscriptions {
		if sub.Recommendation != models.AdviceCancel {
			continue
		}
		cancelTotal += sub.Cost
		if len(names) < maxNamedSubs {
			names = append(names, sub.Name)
		}
	}
	if len(names) > 0 {
		add(models.Insight{
			Title: "Subscription optimization",
			Description: fmt.Sprintf("You can save %s/month by cancelling unused subscriptions: %s.",
				formatAmount(cancelTotal), strings.Join(names, ", ")),
			Type:  models.InsightTip,
			Value: formatAmount(cancelTotal) + "/mo",
		})
	}

	// Emergency fund gap
	for _, g := range in.Goals {
		if !strings.Contains(g.Name, "Emergency") {
			continue
		}
		if remaining := g.Remaining(); remaining > 0 {
			add(models.Insight{
				Title:       "Emergency fund milestone",
				Description: fmt.Sprintf("You're just %s away from your emergency fund goal.", formatAmount(remaining)),
				Type:        models.InsightPositive,
				Value:       formatAmount(remaining) + " left",
			})
		}
		break
	}

	if in.Savings > investableSavings {
		add(models.Insight{
			Title:       "Investment opportunity",
			Description: "Based on your savings, you could invest 5,000/month in SIP for better returns.",
			Type:        models.InsightTip,
			Value:       "5,000/mo",
		})
	}

	return insights
}
