package metrics

import (
	"time"

	"github.com/rs/zerolog/log"

	"fingenius/internal/models"
	"fingenius/internal/services/classifier"
)

const (
	defaultOccupation = "Professional"
	defaultAge        = 30

	retirementTarget   = 20000000
	retirementDeadline = "2045-01-01"
)

// engineeredMonth is one parsed engineered row
type engineeredMonth struct {
	income        float64
	savings       float64
	totalExpenses float64
	values        map[string]float64 // raw expense column -> amount
}

func (m engineeredMonth) expenseTotal(columns []classifier.ColumnCategory) float64 {
	if m.totalExpenses != 0 {
		return m.totalExpenses
	}
	total := 0.0
	for _, cc := range columns {
		total += m.values[cc.Column]
	}
	return total
}

// categoryStat aggregates the raw columns of one display category
type categoryStat struct {
	Category string
	Average  float64 // mean over the considered months
	Spent    float64 // latest month
}

// Engineered builds a profile from monthly engineered rows. Row 0 is the most
// recent month; at most the first 12 rows are considered.
func (b *Builder) Engineered(table *models.Table) (*models.FinancialProfile, error) {
	now := b.now()
	p := &models.FinancialProfile{GeneratedAt: now}

	rows := table.Rows
	if len(rows) > maxHistoryRows {
		rows = rows[:maxHistoryRows]
	}
	if len(rows) == 0 {
		log.Warn().Msg("Engineered table has no data rows")
		p.Profile = engineeredProfile(nil, 0)
		return p, nil
	}

	columns := presentExpenseColumns(table)
	months := make([]engineeredMonth, len(rows))
	for i, row := range rows {
		m, err := readEngineeredMonth(cellReader{row: row, index: i}, columns)
		if err != nil {
			return nil, err
		}
		months[i] = m
	}
	current := months[0]

	p.Profile = engineeredProfile(rows[0], current.income)
	p.RiskProfile = classifier.RiskProfileForAge(p.Profile.Age)
	p.Recommendations = classifier.RecommendationsFor(p.RiskProfile)
	p.MonthlyHistory = engineeredHistory(months, columns, now)
	p.Expenses = engineeredExpenses(current, columns, now)

	stats := categoryStats(months, columns)
	p.Budgets = budgetsFromStats(stats)

	withSpend := make(map[string]bool)
	for _, e := range p.Expenses {
		withSpend[e.Category] = true
	}
	p.Subscriptions = subscriptionsFor(withSpend, now)

	p.Goals = []models.Goal{
		{
			ID:       1,
			Name:     "Emergency Fund",
			Target:   current.income * 6,
			Saved:    current.savings * 5,
			Deadline: now.AddDate(1, 0, 0).Format(models.DateLayout),
			Icon:     "🛡️",
		},
		{
			ID:       2,
			Name:     "Retirement Corpus",
			Target:   retirementTarget,
			Saved:    current.savings * 20,
			Deadline: retirementDeadline,
			Icon:     "👴",
		},
	}

	for i, m := range months {
		if m.savings <= 0 {
			continue
		}
		typ, ret := classifier.InvestmentType(i)
		p.Investments = append(p.Investments, models.Investment{
			Type:         typ,
			Amount:       m.savings,
			AnnualReturn: ret,
		})
	}

	p.Insights = buildInsights(insightInput{
		Income:        current.income,
		Savings:       current.savings,
		Stats:         stats,
		Subscriptions: p.Subscriptions,
		Goals:         p.Goals,
	})

	return p, nil
}

// presentExpenseColumns filters the static column map to columns the table carries
func presentExpenseColumns(table *models.Table) []classifier.ColumnCategory {
	set := table.ColumnSet()
	var present []classifier.ColumnCategory
	for _, cc := range classifier.ExpenseColumns {
		if set[cc.Column] {
			present = append(present, cc)
		}
	}
	return present
}

func readEngineeredMonth(c cellReader, columns []classifier.ColumnCategory) (engineeredMonth, error) {
	var m engineeredMonth
	var err error
	if m.income, err = c.number("income"); err != nil {
		return m, err
	}
	if m.savings, err = c.number(classifier.SavingsColumn); err != nil {
		return m, err
	}
	if m.totalExpenses, err = c.number("total_expenses"); err != nil {
		return m, err
	}
	m.values = make(map[string]float64, len(columns))
	for _, cc := range columns {
		v, err := c.number(cc.Column)
		if err != nil {
			return m, err
		}
		m.values[cc.Column] = v
	}
	return m, nil
}

func engineeredProfile(row models.Row, income float64) models.UserProfile {
	profile := models.UserProfile{
		Name:          "User",
		Email:         "user@finance.com",
		MonthlyIncome: income,
		Occupation:    defaultOccupation,
		Age:           defaultAge,
	}
	if row == nil {
		return profile
	}
	if occ := row.Get("occupation"); occ != "" {
		profile.Occupation = occ
	}
	if age, ok := parseAmount(row.Get("age")); ok && age > 0 {
		profile.Age = int(age)
	}
	return profile
}

// engineeredHistory lists months oldest first; the label is the month of
// now minus 30 days per month back
func engineeredHistory(months []engineeredMonth, columns []classifier.ColumnCategory, now time.Time) []models.MonthlySummary {
	history := make([]models.MonthlySummary, 0, len(months))
	for monthsAgo := len(months) - 1; monthsAgo >= 0; monthsAgo-- {
		m := months[monthsAgo]
		history = append(history, models.MonthlySummary{
			Month:      now.AddDate(0, 0, -30*monthsAgo).Format("Jan"),
			Income:     m.income,
			Expense:    m.expenseTotal(columns),
			Investment: m.savings,
		})
	}
	return history
}

// engineeredExpenses spreads the current month's category spend across the
// month on stable per-column days, newest first
func engineeredExpenses(current engineeredMonth, columns []classifier.ColumnCategory, now time.Time) []models.Expense {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var expenses []models.Expense
	for _, cc := range columns {
		amt := current.values[cc.Column]
		if amt <= 0 {
			continue
		}
		date := firstOfMonth.AddDate(0, 0, dayOffset(cc.Column, 20)).Format(models.DateLayout)
		expenses = append(expenses, models.Expense{
			ID:          stableID(cc.Column, date),
			Date:        date,
			Description: "Payment for " + titleColumn(cc.Column),
			Category:    cc.Display,
			Badge:       classifier.Badge(cc.Display),
			Amount:      amt,
		})
	}

	set := models.NewExpenseSet(expenses)
	set.SortByDateDesc()
	return set.Expenses
}

// categoryStats sums raw columns into display categories in first-appearance order
func categoryStats(months []engineeredMonth, columns []classifier.ColumnCategory) []categoryStat {
	index := make(map[string]int)
	var stats []categoryStat
	for _, cc := range columns {
		i, ok := index[cc.Display]
		if !ok {
			i = len(stats)
			index[cc.Display] = i
			stats = append(stats, categoryStat{Category: cc.Display})
		}

		sum := 0.0
		for _, m := range months {
			sum += m.values[cc.Column]
		}
		stats[i].Average += sum / float64(len(months))
		stats[i].Spent += months[0].values[cc.Column]
	}
	return stats
}

func budgetsFromStats(stats []categoryStat) []models.Budget {
	var budgets []models.Budget
	for _, s := range stats {
		if s.Spent <= 0 && s.Average <= 0 {
			continue
		}
		budgets = append(budgets, models.Budget{
			ID:       len(budgets) + 1,
			Category: s.Category,
			Budget:   roundAmount(s.Average),
			Spent:    roundAmount(s.Spent),
			Icon:     classifier.Icon(s.Category),
		})
	}
	return budgets
}

// subscriptionsFor instantiates the triggered catalog entries with stable
// renewal dates within the next 30 days
func subscriptionsFor(withSpend map[string]bool, now time.Time) []models.Subscription {
	templates := classifier.SubscriptionsFor(withSpend)
	subs := make([]models.Subscription, 0, len(templates))
	for i, tmpl := range templates {
		subs = append(subs, models.Subscription{
			ID:             i + 1,
			Name:           tmpl.Name,
			Cost:           tmpl.Cost,
			NextRenewal:    now.AddDate(0, 0, dayOffset(tmpl.Name, 30)).Format(models.DateLayout),
			Category:       tmpl.Category,
			Logo:           tmpl.Logo,
			Active:         tmpl.Active,
			Recommendation: tmpl.Recommendation,
		})
	}
	return subs
}
