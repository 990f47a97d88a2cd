package metrics

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"fingenius/internal/models"
)

var fixedNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestBuilder() *Builder {
	return &Builder{Now: func() time.Time { return fixedNow }}
}

func makeTable(columns []string, rows ...[]string) *models.Table {
	table := &models.Table{Columns: columns}
	for _, r := range rows {
		row := make(models.Row)
		for i, col := range columns {
			if i < len(r) {
				row[col] = r[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

var engineeredCols = []string{
	"income", "rent", "loan_repayment", "groceries", "transport", "eating_out",
	"utilities", "healthcare", "savings", "age",
}

// two months, latest first
func sampleEngineered() *models.Table {
	return makeTable(engineeredCols,
		[]string{"100000", "20000", "5000", "3000", "0", "1000", "1500", "0", "25000", "28"},
		[]string{"90000", "18000", "5000", "2000", "0", "1000", "1500", "0", "20000", "28"},
	)
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		current, previous, expected float64
	}{
		{110, 100, 10},
		{90, 100, -10},
		{0, 0, 0},
		{50, 0, 100},
		{-50, -100, 50},
	}

	for _, tt := range tests {
		got := PercentChange(tt.current, tt.previous)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("PercentChange(%v, %v) = %v, want %v", tt.current, tt.previous, got, tt.expected)
		}
	}
}

func TestRoundAmount(t *testing.T) {
	tests := []struct {
		input    float64
		expected int64
	}{
		{2.5, 2},
		{3.5, 4},
		{1234.4, 1234},
		{-12, 0},
		{0, 0},
	}

	for _, tt := range tests {
		if got := roundAmount(tt.input); got != tt.expected {
			t.Errorf("roundAmount(%v) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"", 0, true},
		{"  ", 0, true},
		{"1200", 1200, true},
		{"1,200.50", 1200.5, true},
		{"$1,200", 1200, true},
		{"₹ 85,000", 85000, true},
		{"(250.00)", -250, true},
		{"-42", -42, true},
		{"abc", 0, false},
		{"12abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseAmount(tt.input)
			if ok != tt.ok {
				t.Fatalf("parseAmount(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("parseAmount(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2024-01-15", "2024-01-15"},
		{"01/15/2024", "2024-01-15"},
		{"1/5/2024", "2024-01-05"},
		{"Jan 15, 2024", "2024-01-15"},
		{"45306", "2024-01-15"}, // Excel serial
		{"not a date", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := parseDate(tt.input)
			got := ""
			if !d.IsZero() {
				got = d.Format(models.DateLayout)
			}
			if got != tt.expected {
				t.Errorf("parseDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEngineeredHistory(t *testing.T) {
	p, err := newTestBuilder().Engineered(sampleEngineered())
	if err != nil {
		t.Fatalf("Engineered failed: %v", err)
	}

	if len(p.MonthlyHistory) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(p.MonthlyHistory))
	}

	first, last := p.MonthlyHistory[0], p.MonthlyHistory[1]
	if first.Month != "Feb" || last.Month != "Mar" {
		t.Errorf("Expected labels Feb, Mar; got %s, %s", first.Month, last.Month)
	}
	if last.Income != 100000 {
		t.Errorf("Expected current income 100000, got %v", last.Income)
	}
	if first.Income != 90000 {
		t.Errorf("Expected oldest income 90000, got %v", first.Income)
	}
	// rent + loan + groceries + transport + eating_out + utilities + healthcare
	if last.Expense != 30500 {
		t.Errorf("Expected current expense 30500, got %v", last.Expense)
	}
	if last.Investment != 25000 {
		t.Errorf("Expected current investment 25000, got %v", last.Investment)
	}
}

func TestEngineeredTotalExpensesColumn(t *testing.T) {
	cols := append(append([]string{}, engineeredCols...), "total_expenses")
	table := makeTable(cols,
		[]string{"100000", "20000", "5000", "3000", "0", "1000", "1500", "0", "25000", "28", "40000"},
		[]string{"90000", "18000", "5000", "2000", "0", "1000", "1500", "0", "20000", "28", "0"},
	)

	p, err := newTestBuilder().Engineered(table)
	if err != nil {
		t.Fatalf("Engineered failed: %v", err)
	}
	if got := p.MonthlyHistory[1].Expense; got != 40000 {
		t.Errorf("Expected total_expenses to win, got %v", got)
	}
	// zero total_expenses falls back to the column sum
	if got := p.MonthlyHistory[0].Expense; got != 27500 {
		t.Errorf("Expected column sum 27500, got %v", got)
	}
}

func TestEngineeredHistoryCappedAtTwelve(t *testing.T) {
	var rows [][]string
	for i := 0; i < 15; i++ {
		rows = append(rows, []string{"50000", "10000", "0", "2000", "500", "500", "800", "0", "5000", "40"})
	}
	p, err := newTestBuilder().Engineered(makeTable(engineeredCols, rows...))
	if err != nil {
		t.Fatalf("Engineered failed: %v", err)
	}
	if len(p.MonthlyHistory) != 12 {
		t.Errorf("Expected 12 history entries, got %d", len(p.MonthlyHistory))
	}
}

func TestEngineeredBudgets(t *testing.T) {
	p, err := newTestBuilder().Engineered(sampleEngineered())
	if err != nil {
		t.Fatalf("Engineered failed: %v", err)
	}

	expected := []models.Budget{
		{ID: 1, Category: "Rent & EMI", Budget: 24000, Spent: 25000, Icon: "🏠"},
		{ID: 2, Category: "Food & Dining", Budget: 3500, Spent: 4000, Icon: "🍔"},
		{ID: 3, Category: "Utilities", Budget: 1500, Spent: 1500, Icon: "💡"},
	}
	if !reflect.DeepEqual(p.Budgets, expected) {
		t.Errorf("Budgets mismatch:\n got  %+v\n want %+v", p.Budgets, expected)
	}
}

func TestEngineeredExpenses(t *testing.T) {
	p, err := newTestBuilder().Engineered(sampleEngineered())
	if err != nil {
		t.Fatalf("Engineered failed: %v", err)
	}

	// rent, loan_repayment, groceries, eating_out, utilities are > 0
	if len(p.Expenses) != 5 {
		t.Fatalf("Expected 5 expenses, got %d", len(p.Expenses))
	}

	for i, e := range p.Expenses {
		d, err := time.Parse(models.DateLayout, e.Date)
		if err != nil {
			t.Fatalf("Unparseable date %q", e.Date)
		}
		if d.Year() != 2025 || d.Month() != time.March || d.Day() < 2 || d.Day() > 21 {
			t.Errorf("Date %s outside the current month window", e.Date)
		}
		if i > 0 && p.Expenses[i-1].Date < e.Date {
			t.Errorf("Expenses not sorted newest first at %d", i)
		}
		if !strings.HasPrefix(e.Description, "Payment for ") {
			t.Errorf("Unexpected description %q", e.Description)
		}
	}

	var eatingOut *models.Expense
	for i := range p.Expenses {
		if p.Expenses[i].Description == "Payment for Eating Out" {
			eatingOut = &p.Expenses[i]
		}
	}
	if eatingOut == nil {
		t.Fatal("Expected an eating out expense")
	}
	if eatingOut.Category != "Food & Dining" || eatingOut.Badge != "food" {
		t.Errorf("Eating out mapped to %q/%q", eatingOut.Category, eatingOut.Badge)
	}
}

func TestEngineeredDeterministic(t *testing.T) {
	b := newTestBuilder()
	first, err := b.Engineered(sampleEngineered())
	if err != nil {
		t.Fatalf("Engineered failed: %v", err)
	}
	second, err := b.Engineered(sampleEngineered())
	if err != nil {
		t.Fatalf("Engineered failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical profiles for identical input")
	}
}

func TestEngineeredSubscriptions(t *testing.T) {
	t.Run("triggered by utilities", func(t *testing.T) {
		p, err := newTestBuilder().Engineered(sampleEngineered())
		if err != nil {
			t.Fatalf("Engineered failed: %v", err)
		}
		if len(p.Subscriptions) != 1 || p.Subscriptions[0].Name != "Google One" {
			t.Fatalf("Expected only Google One, got %+v", p.Subscriptions)
		}
		renewal, _ := time.Parse(models.DateLayout, p.Subscriptions[0].NextRenewal)
		days := renewal.Sub(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)).Hours() / 24
		if days < 1 || days > 30 {
			t.Errorf("Renewal %s not within 30 days", p.Subscriptions[0].NextRenewal)
		}
	})

	t.Run("default when nothing triggers", func(t *testing.T) {
		table := makeTable(engineeredCols,
			[]string{"100000", "20000", "0", "0", "0", "0", "0", "0", "0", "28"},
		)
		p, err := newTestBuilder().Engineered(table)
		if err != nil {
			t.Fatalf("Engineered failed: %v", err)
		}
		if len(p.Subscriptions) != 1 || p.Subscriptions[0].Name != "Netflix" {
			t.Errorf("Expected default Netflix, got %+v", p.Subscriptions)
		}
	})

	t.Run("entertainment triggers three", func(t *testing.T) {
		cols := append(append([]string{}, engineeredCols...), "entertainment")
		table := makeTable(cols,
			[]string{"100000", "20000", "0", "0", "0", "0", "0", "0", "0", "28", "2500"},
		)
		p, err := newTestBuilder().Engineered(table)
		if err != nil {
			t.Fatalf("Engineered failed: %v", err)
		}
		var names []string
		for _, s := range p.Subscriptions {
			names = append(names, s.Name)
		}
		if got := strings.Join(names, ","); got != "Netflix,Spotify,Hotstar" {
			t.Errorf("Subscriptions = %s", got)
		}
	})
}

func TestEngineeredGoalsAndProfile(t *testing.T) {
	p, err := newTestBuilder().Engineered(sampleEngineered())
	if err != nil {
		t.Fatalf("Engineered failed: %v", err)
	}

	if len(p.Goals) != 2 {
		t.Fatalf("Expected 2 goals, got %d", len(p.Goals))
	}
	ef := p.Goals[0]
	if ef.Target != 600000 || ef.Saved != 125000 || ef.Deadline != "2026-03-15" {
		t.Errorf("Emergency fund goal = %+v", ef)
	}
	ret := p.Goals[1]
	if ret.Target != 20000000 || ret.Saved != 500000 || ret.Deadline != "2045-01-01" {
		t.Errorf("Retirement goal = %+v", ret)
	}

	if p.Profile.Age != 28 || p.Profile.Occupation != "Professional" || p.Profile.MonthlyIncome != 100000 {
		t.Errorf("Profile = %+v", p.Profile)
	}
	if p.RiskProfile != models.RiskHigh {
		t.Errorf("Expected high risk for age 28, got %s", p.RiskProfile)
	}
	if len(p.Investments) != 2 || p.Investments[0].Type != "Stocks" || p.Investments[1].Type != "Mutual Funds" {
		t.Errorf("Investments = %+v", p.Investments)
	}
}

func TestEngineeredInsights(t *testing.T) {
	p, err := newTestBuilder().Engineered(sampleEngineered())
	if err != nil {
		t.Fatalf("Engineered failed: %v", err)
	}

	var titles []string
	for _, ins := range p.Insights {
		titles = append(titles, ins.Title)
	}
	expected := []string{"Great savings progress!", "Emergency fund milestone", "Investment opportunity"}
	if !reflect.DeepEqual(titles, expected) {
		t.Fatalf("Insight titles = %v, want %v", titles, expected)
	}

	if p.Insights[0].Percentage == nil || *p.Insights[0].Percentage != 5 {
		t.Errorf("Expected savings percentage 5, got %v", p.Insights[0].Percentage)
	}
	if p.Insights[1].Value != "475,000 left" {
		t.Errorf("Expected milestone value '475,000 left', got %q", p.Insights[1].Value)
	}
	for i, ins := range p.Insights {
		if ins.ID != i+1 {
			t.Errorf("Insight %d has id %d", i, ins.ID)
		}
	}
}

func TestBuildInsightsRules(t *testing.T) {
	t.Run("low savings warning", func(t *testing.T) {
		ins := buildInsights(insightInput{Income: 100000, Savings: 2000})
		if len(ins) != 1 || ins[0].Type != models.InsightWarning || ins[0].Value != "2.0% rate" {
			t.Errorf("Got %+v", ins)
		}
	})

	t.Run("category increase and decrease", func(t *testing.T) {
		ins := buildInsights(insightInput{
			Income:  100000,
			Savings: 10000,
			Stats: []categoryStat{
				{Category: "Travel", Average: 2000, Spent: 3000},
				{Category: "Shopping", Average: 5000, Spent: 2000},
				{Category: "Utilities", Average: 500, Spent: 900}, // below spend floor
			},
		})
		if len(ins) != 2 {
			t.Fatalf("Expected 2 insights, got %+v", ins)
		}
		if ins[0].Title != "Travel expenses increased" || *ins[0].Percentage != 50 {
			t.Errorf("Got %+v", ins[0])
		}
		if ins[1].Title != "Shopping expenses down" || *ins[1].Percentage != 60 || ins[1].Trend != "down" {
			t.Errorf("Got %+v", ins[1])
		}
	})

	t.Run("subscription tip sums all cancellations", func(t *testing.T) {
		subs := []models.Subscription{
			{Name: "A", Cost: 100, Recommendation: models.AdviceCancel},
			{Name: "B", Cost: 200, Recommendation: models.AdviceKeep},
			{Name: "C", Cost: 300, Recommendation: models.AdviceCancel},
			{Name: "D", Cost: 400, Recommendation: models.AdviceCancel},
			{Name: "E", Cost: 1000, Recommendation: models.AdviceCancel},
		}
		ins := buildInsights(insightInput{Income: 100000, Savings: 10000, Subscriptions: subs})
		if len(ins) != 1 {
			t.Fatalf("Expected 1 insight, got %+v", ins)
		}
		if ins[0].Value != "1,800/mo" {
			t.Errorf("Expected value 1,800/mo, got %q", ins[0].Value)
		}
		if !strings.HasSuffix(ins[0].Description, "A, C, D.") {
			t.Errorf("Expected three names, got %q", ins[0].Description)
		}
	})
}

func TestEngineeredNonNumericCell(t *testing.T) {
	table := makeTable(engineeredCols,
		[]string{"100000", "20000", "0", "0", "0", "0", "0", "0", "0", "28"},
		[]string{"100000", "lots", "0", "0", "0", "0", "0", "0", "0", "28"},
	)

	_, err := newTestBuilder().Engineered(table)
	var cellErr *CellError
	if !errors.As(err, &cellErr) {
		t.Fatalf("Expected CellError, got %v", err)
	}
	if cellErr.Row != 2 || cellErr.Column != "rent" || cellErr.Value != "lots" {
		t.Errorf("CellError = %+v", cellErr)
	}
}

func TestEngineeredNoRows(t *testing.T) {
	p, err := newTestBuilder().Engineered(makeTable(engineeredCols))
	if err != nil {
		t.Fatalf("Engineered failed: %v", err)
	}
	if len(p.Budgets) != 0 || len(p.MonthlyHistory) != 0 {
		t.Errorf("Expected no derived lists, got %+v", p)
	}
}

func TestTransactionLog(t *testing.T) {
	table := makeTable([]string{"date", "description", "category", "amount"},
		[]string{"2025-01-10", "Groceries", "Food", "1000"},
		[]string{"2025-02-03", "Bus", "Travel", "200"},
		[]string{"2025-02-20", "Dinner", "Food", "600"},
		[]string{"someday", "Lunch", "Food", "400"},
	)

	p, err := newTestBuilder().TransactionLog(table)
	if err != nil {
		t.Fatalf("TransactionLog failed: %v", err)
	}

	if len(p.Expenses) != 4 {
		t.Fatalf("Expected 4 expenses, got %d", len(p.Expenses))
	}

	if len(p.MonthlyHistory) != 2 {
		t.Fatalf("Expected 2 months, got %+v", p.MonthlyHistory)
	}
	if p.MonthlyHistory[0].Month != "Jan" || p.MonthlyHistory[0].Expense != 1000 {
		t.Errorf("January = %+v", p.MonthlyHistory[0])
	}
	if p.MonthlyHistory[1].Month != "Feb" || p.MonthlyHistory[1].Expense != 800 {
		t.Errorf("February = %+v", p.MonthlyHistory[1])
	}

	expected := []models.Budget{
		{ID: 1, Category: "Food", Budget: 2500, Spent: 2000, Icon: "💰"},
		{ID: 2, Category: "Travel", Budget: 250, Spent: 200, Icon: "🚗"},
	}
	if !reflect.DeepEqual(p.Budgets, expected) {
		t.Errorf("Budgets mismatch:\n got  %+v\n want %+v", p.Budgets, expected)
	}
}

func TestTransactionLogBadAmount(t *testing.T) {
	table := makeTable([]string{"date", "category", "amount"},
		[]string{"2025-01-10", "Food", "ten"},
	)
	_, err := newTestBuilder().TransactionLog(table)
	var cellErr *CellError
	if !errors.As(err, &cellErr) || cellErr.Column != "amount" {
		t.Fatalf("Expected amount CellError, got %v", err)
	}
}

func TestInvestmentTable(t *testing.T) {
	table := makeTable([]string{"type", "amount", "annual_return"},
		[]string{"Gold", "5000", "8"},
		[]string{"Bonds", "2,000", "6.5"},
	)
	p, err := newTestBuilder().InvestmentTable(table, "annual_return")
	if err != nil {
		t.Fatalf("InvestmentTable failed: %v", err)
	}
	expected := []models.Investment{
		{Type: "Gold", Amount: 5000, AnnualReturn: 8},
		{Type: "Bonds", Amount: 2000, AnnualReturn: 6.5},
	}
	if !reflect.DeepEqual(p.Investments, expected) {
		t.Errorf("Investments = %+v", p.Investments)
	}
}

func TestGoalTable(t *testing.T) {
	table := makeTable([]string{"name", "target", "current", "deadline"},
		[]string{"Car", "500000", "100000", "2026-06-30"},
		[]string{"Trip", "80000", "20000", ""},
	)
	p, err := newTestBuilder().GoalTable(table)
	if err != nil {
		t.Fatalf("GoalTable failed: %v", err)
	}
	if len(p.Goals) != 2 {
		t.Fatalf("Expected 2 goals, got %d", len(p.Goals))
	}
	if p.Goals[0].Deadline != "2026-06-30" || p.Goals[0].Saved != 100000 {
		t.Errorf("Goal 1 = %+v", p.Goals[0])
	}
	if p.Goals[1].Deadline != "2025-12-31" {
		t.Errorf("Expected default deadline 2025-12-31, got %s", p.Goals[1].Deadline)
	}
}
