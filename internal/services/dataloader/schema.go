package dataloader

import "fmt"

// Strategy names the parsing path selected for an ingested table
type Strategy string

const (
	StrategyEngineered     Strategy = "engineered"
	StrategyTransactionLog Strategy = "transaction_log"
	StrategyInvestments    Strategy = "investment_table"
	StrategyGoals          Strategy = "goal_table"
	StrategyNone           Strategy = "none"
)

// EngineeredColumns must all be present for the engineered dataset shape
var EngineeredColumns = []string{
	"income", "rent", "groceries", "transport", "eating_out", "utilities", "healthcare",
}

var (
	transactionColumns = []string{"date", "category", "amount"}
	investmentColumns  = []string{"type", "amount"}
	goalColumns        = []string{"name", "target", "current"}
)

// ReturnColumns are accepted names for an investment table's return column, in preference order
var ReturnColumns = []string{"return", "annual_return"}

// DetectStrategy picks the parsing strategy for a normalized column set.
// Only membership matters, never order; on overlap the first shape in
// engineered, transaction log, investment table, goal table order wins.
func DetectStrategy(columns []string) Strategy {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}

	switch {
	case hasAll(set, EngineeredColumns):
		return StrategyEngineered
	case hasAll(set, transactionColumns):
		return StrategyTransactionLog
	case hasAll(set, investmentColumns) && ReturnColumn(columns) != "":
		return StrategyInvestments
	case hasAll(set, goalColumns):
		return StrategyGoals
	default:
		return StrategyNone
	}
}

// ResolveStrategy is DetectStrategy reporting StrategyNone as ErrNoStrategyMatch
func ResolveStrategy(columns []string) (Strategy, error) {
	s := DetectStrategy(columns)
	if s == StrategyNone {
		return s, fmt.Errorf("%w: %v", ErrNoStrategyMatch, columns)
	}
	return s, nil
}

// ReturnColumn returns the investment return column present in columns, or ""
func ReturnColumn(columns []string) string {
	for _, want := range ReturnColumns {
		for _, c := range columns {
			if c == want {
				return c
			}
		}
	}
	return ""
}

func hasAll(set map[string]bool, required []string) bool {
	for _, col := range required {
		if !set[col] {
			return false
		}
	}
	return true
}
