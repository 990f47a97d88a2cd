package calculator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Function names accepted by Run
const (
	FuncBudgetAllocation = "budget_allocation"
	FuncEmergencyFund    = "emergency_fund"
	FuncDebtPayoff       = "debt_payoff"
	FuncInvestmentGrowth = "investment_growth"
	FuncMortgagePayment  = "mortgage_payment"
)

var (
	ErrUnknownFunction    = errors.New("unknown function")
	ErrMissingParameter   = errors.New("missing parameter")
	ErrInvalidParameter   = errors.New("parameter is not a number")
	ErrNoFunctionDetected = errors.New("no function detected")
)

// aliases maps loose names, as produced by the language model, to functions
var aliases = map[string]string{
	"budget":     FuncBudgetAllocation,
	"budgeting":  FuncBudgetAllocation,
	"emergency":  FuncEmergencyFund,
	"debt":       FuncDebtPayoff,
	"investment": FuncInvestmentGrowth,
	"invest":     FuncInvestmentGrowth,
	"mortgage":   FuncMortgagePayment,
	"loan":       FuncMortgagePayment,
}

type function struct {
	params []string // whitelist, in call order
	run    func(args []float64) (any, error)
}

var functions = map[string]function{
	FuncBudgetAllocation: {
		params: []string{"income"},
		run:    func(a []float64) (any, error) { return BudgetAllocation(a[0]) },
	},
	FuncEmergencyFund: {
		params: []string{"monthly_expenses"},
		run:    func(a []float64) (any, error) { return EmergencyFund(a[0]) },
	},
	FuncDebtPayoff: {
		params: []string{"principal", "annual_interest_rate", "monthly_payment"},
		run:    func(a []float64) (any, error) { return DebtPayoff(a[0], a[1], a[2]) },
	},
	FuncInvestmentGrowth: {
		params: []string{"principal", "annual_return_rate", "years"},
		run:    func(a []float64) (any, error) { return InvestmentGrowth(a[0], a[1], a[2]) },
	},
	FuncMortgagePayment: {
		params: []string{"loan_amount", "annual_interest_rate", "years"},
		run: func(a []float64) (any, error) {
			if a[1] == 0 {
				return LinearMortgage(a[0], a[2])
			}
			return MortgagePayment(a[0], a[1], a[2])
		},
	},
}

// Calculation is a dispatched formula call with the parameters actually used
type Calculation struct {
	FunctionName string             `json:"function_name"`
	Parameters   map[string]float64 `json:"parameters"`
	Result       any                `json:"result"`
}

// ResolveName maps an alias to its canonical function name. Unknown names
// are returned lower-cased and trimmed.
func ResolveName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// Functions maps each canonical function name to its parameter whitelist
func Functions() map[string][]string {
	out := make(map[string][]string, len(functions))
	for name, fn := range functions {
		out[name] = append([]string(nil), fn.params...)
	}
	return out
}

// FunctionNames returns the canonical function names in sorted order
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run resolves name, keeps only the function's whitelisted parameters,
// coerces them to numbers and evaluates the formula. Parameters outside the
// whitelist are dropped silently.
func Run(name string, params map[string]any) (*Calculation, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNoFunctionDetected
	}
	canonical := ResolveName(name)
	fn, ok := functions[canonical]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}

	used := make(map[string]float64, len(fn.params))
	args := make([]float64, len(fn.params))
	for i, p := range fn.params {
		raw, ok := params[p]
		if !ok || raw == nil {
			return nil, fmt.Errorf("%s: %w %q", canonical, ErrMissingParameter, p)
		}
		v, err := toFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %q: %w", canonical, p, err)
		}
		args[i] = v
		used[p] = v
	}

	result, err := fn.run(args)
	if err != nil {
		return nil, err
	}

	return &Calculation{
		FunctionName: canonical,
		Parameters:   used,
		Result:       result,
	}, nil
}

var numberCleaner = strings.NewReplacer(",", "", "%", "", "$", "", "₹", "", " ", "")

// toFloat accepts JSON numbers and numeric strings such as "1,00,000" or "8%".
// NaN and infinities are rejected.
func toFloat(v any) (float64, error) {
	f, err := parseNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidParameter, v)
	}
	return f, nil
}

func parseNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidParameter, n)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(numberCleaner.Replace(strings.TrimSpace(n)), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidParameter, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidParameter, v)
	}
}
