package metrics

import (
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"fingenius/internal/models"
	"fingenius/internal/services/classifier"
)

const (
	// budgetHeadroom scales observed spend into a suggested budget for transaction logs
	budgetHeadroom = 1.25
	goalIcon       = "🎯"
)

// uploadProfile is the header used for uploads that carry no personal details
func uploadProfile() models.UserProfile {
	return models.UserProfile{
		Name:          "User",
		Email:         "user@example.com",
		MonthlyIncome: 85000,
		Age:           defaultAge,
	}
}

// TransactionLog builds a profile from dated, categorized expense rows
func (b *Builder) TransactionLog(table *models.Table) (*models.FinancialProfile, error) {
	p := &models.FinancialProfile{GeneratedAt: b.now(), Profile: uploadProfile()}

	expenses := make([]models.Expense, 0, len(table.Rows))
	skippedDates := 0
	for i, row := range table.Rows {
		amount, err := cellReader{row: row, index: i}.number("amount")
		if err != nil {
			return nil, err
		}

		rawDate := row.Get("date")
		date := rawDate
		if d := parseDate(rawDate); !d.IsZero() {
			date = d.Format(models.DateLayout)
		} else {
			skippedDates++
		}

		category := row.Get("category")
		if category == "" {
			category = "Other"
		}

		expenses = append(expenses, models.Expense{
			ID:          stableID(rawDate, category, strconv.Itoa(i)),
			Date:        date,
			Description: row.Get("description"),
			Category:    category,
			Badge:       classifier.Badge(category),
			Amount:      amount,
		})
	}
	if skippedDates > 0 {
		log.Warn().Int("rows", skippedDates).Msg("Transaction dates could not be parsed; excluded from monthly history")
	}

	set := models.NewExpenseSet(expenses)
	set.SortByDateDesc()
	p.Expenses = set.Expenses

	months := set.TotalsByMonth()
	if len(months) > maxHistoryRows {
		months = months[len(months)-maxHistoryRows:]
	}
	for _, mt := range months {
		p.MonthlyHistory = append(p.MonthlyHistory, models.MonthlySummary{
			Month:   mt.Month.Format("Jan"),
			Expense: mt.Amount,
		})
	}

	for _, ct := range set.TotalsByCategory() {
		if ct.Amount <= 0 {
			continue
		}
		p.Budgets = append(p.Budgets, models.Budget{
			ID:       len(p.Budgets) + 1,
			Category: ct.Category,
			Budget:   roundAmount(ct.Amount * budgetHeadroom),
			Spent:    roundAmount(ct.Amount),
			Icon:     classifier.Icon(ct.Category),
		})
	}

	return p, nil
}

// InvestmentTable builds a profile whose holdings come from the rows.
// returnColumn names the column carrying the annual return percentage.
func (b *Builder) InvestmentTable(table *models.Table, returnColumn string) (*models.FinancialProfile, error) {
	p := &models.FinancialProfile{GeneratedAt: b.now(), Profile: uploadProfile()}

	for i, row := range table.Rows {
		c := cellReader{row: row, index: i}
		amount, err := c.number("amount")
		if err != nil {
			return nil, err
		}
		ret, err := c.number(returnColumn)
		if err != nil {
			return nil, err
		}
		p.Investments = append(p.Investments, models.Investment{
			Type:         row.Get("type"),
			Amount:       amount,
			AnnualReturn: ret,
		})
	}
	return p, nil
}

// GoalTable builds a profile whose goals come from the rows. A missing or
// unparseable deadline defaults to the end of the current year.
func (b *Builder) GoalTable(table *models.Table) (*models.FinancialProfile, error) {
	now := b.now()
	p := &models.FinancialProfile{GeneratedAt: now, Profile: uploadProfile()}
	defaultDeadline := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location()).Format(models.DateLayout)

	for i, row := range table.Rows {
		c := cellReader{row: row, index: i}
		target, err := c.number("target")
		if err != nil {
			return nil, err
		}
		saved, err := c.number("current")
		if err != nil {
			return nil, err
		}

		deadline := defaultDeadline
		if d := parseDate(row.Get("deadline")); !d.IsZero() {
			deadline = d.Format(models.DateLayout)
		}

		p.Goals = append(p.Goals, models.Goal{
			ID:       i + 1,
			Name:     row.Get("name"),
			Target:   target,
			Saved:    saved,
			Deadline: deadline,
			Icon:     goalIcon,
		})
	}
	return p, nil
}
