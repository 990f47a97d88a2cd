// Package metrics derives the dashboard profile from ingested tables.
package metrics

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxHistoryRows caps how many engineered rows (months) are considered
const maxHistoryRows = 12

// Builder turns detected tables into FinancialProfiles. Now is the reference
// clock for month labels, synthetic dates and deadlines.
type Builder struct {
	Now func() time.Time
}

// New creates a Builder on the wall clock
func New() *Builder {
	return &Builder{Now: time.Now}
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// PercentChange calculates the percentage change between two values
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / math.Abs(previous)) * 100
}

// roundAmount rounds half to even and clamps at zero, for budget figures
func roundAmount(v float64) int64 {
	n := decimal.NewFromFloat(v).RoundBank(0).IntPart()
	if n < 0 {
		return 0
	}
	return n
}

// RoundRate rounds a percentage to one decimal place, half to even
func RoundRate(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).RoundBank(1).Float64()
	return f
}

// titleColumn turns a raw column key into a label, e.g. eating_out -> Eating Out
func titleColumn(column string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(column, "_", " "))
}

// formatAmount renders a whole amount with thousands separators
func formatAmount(v float64) string {
	return message.NewPrinter(language.English).Sprintf("%d", int64(math.Round(v)))
}
