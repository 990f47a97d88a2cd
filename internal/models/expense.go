package models

import (
	"sort"
	"time"
)

// DateLayout is the calendar format used for every date string in a profile
const DateLayout = "2006-01-02"

// ExpenseSet wraps a slice with aggregation helpers
type ExpenseSet struct {
	Expenses []Expense
}

// NewExpenseSet creates a new ExpenseSet from a slice
func NewExpenseSet(expenses []Expense) *ExpenseSet {
	return &ExpenseSet{Expenses: expenses}
}

// Len returns the number of expenses
func (es *ExpenseSet) Len() int {
	return len(es.Expenses)
}

// SumAmount returns the sum of all amounts
func (es *ExpenseSet) SumAmount() float64 {
	total := 0.0
	for _, e := range es.Expenses {
		total += e.Amount
	}
	return total
}

// CategoryTotal is a category with its summed spend
type CategoryTotal struct {
	Category string
	Amount   float64
}

// TotalsByCategory sums amounts per category in first-appearance order.
// Blank categories are reported as "Other".
func (es *ExpenseSet) TotalsByCategory() []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal
	for _, e := range es.Expenses {
		cat := e.Category
		if cat == "" {
			cat = "Other"
		}
		i, ok := index[cat]
		if !ok {
			i = len(totals)
			index[cat] = i
			totals = append(totals, CategoryTotal{Category: cat})
		}
		totals[i].Amount += e.Amount
	}
	return totals
}

// SummaryByCategory is TotalsByCategory as a map, the shape the expenses view returns
func (es *ExpenseSet) SummaryByCategory() map[string]float64 {
	summary := make(map[string]float64)
	for _, ct := range es.TotalsByCategory() {
		summary[ct.Category] = ct.Amount
	}
	return summary
}

// MonthTotal is the spend for one calendar month
type MonthTotal struct {
	Month  time.Time // first day of the month
	Amount float64
}

// TotalsByMonth groups expenses by calendar month, oldest first.
// Expenses whose date does not parse are skipped.
func (es *ExpenseSet) TotalsByMonth() []MonthTotal {
	byMonth := make(map[time.Time]float64)
	for _, e := range es.Expenses {
		d, err := time.Parse(DateLayout, e.Date)
		if err != nil {
			continue
		}
		m := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[m] += e.Amount
	}

	months := make([]MonthTotal, 0, len(byMonth))
	for m, amt := range byMonth {
		months = append(months, MonthTotal{Month: m, Amount: amt})
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month.Before(months[j].Month)
	})
	return months
}

// SortByDateDesc sorts in place, newest first; ties keep input order
func (es *ExpenseSet) SortByDateDesc() {
	sort.SliceStable(es.Expenses, func(i, j int) bool {
		return es.Expenses[i].Date > es.Expenses[j].Date
	})
}
