// Package calculator implements the personal-finance formulas and the
// name/parameter dispatcher used by the calculate endpoint and the advisor.
package calculator

import (
	"errors"
	"fmt"
	"math"
)

// MaxPayoffMonths bounds the debt payoff simulation
const MaxPayoffMonths = 1000

var (
	ErrNegativeInput   = errors.New("must not be negative")
	ErrNonPositiveTerm = errors.New("must be greater than zero")
	ErrNotFinite       = errors.New("must be a finite number")
	ErrOverflow        = errors.New("is too large to represent")

	// ErrZeroRate is returned by MortgagePayment for an interest-free loan,
	// where the annuity formula divides by zero. Use LinearMortgage instead.
	ErrZeroRate = errors.New("annuity formula is undefined for a zero interest rate")
)

// DomainError reports an input outside a formula's domain
type DomainError struct {
	Function string
	Param    string
	Err      error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s %v", e.Function, e.Param, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func finite(function, param string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &DomainError{Function: function, Param: param, Err: ErrNotFinite}
	}
	return nil
}

func nonNegative(function, param string, v float64) error {
	if err := finite(function, param, v); err != nil {
		return err
	}
	if v < 0 {
		return &DomainError{Function: function, Param: param, Err: ErrNegativeInput}
	}
	return nil
}

// finiteResult rejects results that overflowed
func finiteResult(function string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &DomainError{Function: function, Param: "result", Err: ErrOverflow}
		}
	}
	return nil
}

// BudgetSplit is the 50/30/20 allocation of an income
type BudgetSplit struct {
	Needs   float64 `json:"needs"`
	Wants   float64 `json:"wants"`
	Savings float64 `json:"savings"`
}

// BudgetAllocation splits income 50% needs, 30% wants, 20% savings
func BudgetAllocation(income float64) (*BudgetSplit, error) {
	if err := nonNegative(FuncBudgetAllocation, "income", income); err != nil {
		return nil, err
	}
	split := &BudgetSplit{
		Needs:   income * 0.5,
		Wants:   income * 0.3,
		Savings: income * 0.2,
	}
	if err := finiteResult(FuncBudgetAllocation, split.Needs, split.Wants, split.Savings); err != nil {
		return nil, err
	}
	return split, nil
}

// EmergencyFundResult is the recommended cash reserve
type EmergencyFundResult struct {
	RecommendedFund float64 `json:"recommended_fund"`
}

// EmergencyFund recommends six months of expenses
func EmergencyFund(monthlyExpenses float64) (*EmergencyFundResult, error) {
	if err := nonNegative(FuncEmergencyFund, "monthly_expenses", monthlyExpenses); err != nil {
		return nil, err
	}
	fund := monthlyExpenses * 6
	if err := finiteResult(FuncEmergencyFund, fund); err != nil {
		return nil, err
	}
	return &EmergencyFundResult{RecommendedFund: fund}, nil
}

// DebtPayoffResult is the outcome of the amortization simulation.
// Converged is false when the balance was still positive after MaxPayoffMonths.
type DebtPayoffResult struct {
	MonthsToPayoff int     `json:"months_to_payoff"`
	TotalInterest  float64 `json:"total_interest"`
	Converged      bool    `json:"converged"`
}

// DebtPayoff simulates monthly amortization: each month accrues
// balance × rate/12 interest, then subtracts the payment. The loop stops when
// the balance is paid off or after MaxPayoffMonths iterations.
func DebtPayoff(principal, annualRatePct, monthlyPayment float64) (*DebtPayoffResult, error) {
	if err := nonNegative(FuncDebtPayoff, "principal", principal); err != nil {
		return nil, err
	}
	if err := nonNegative(FuncDebtPayoff, "annual_interest_rate", annualRatePct); err != nil {
		return nil, err
	}
	if err := nonNegative(FuncDebtPayoff, "monthly_payment", monthlyPayment); err != nil {
		return nil, err
	}

	monthlyRate := annualRatePct / 12 / 100
	balance := principal
	months := 0
	totalInterest := 0.0

	for balance > 0 && months < MaxPayoffMonths {
		interest := balance * monthlyRate
		totalInterest += interest
		balance += interest - monthlyPayment
		months++
	}
	if err := finiteResult(FuncDebtPayoff, totalInterest, balance); err != nil {
		return nil, err
	}

	return &DebtPayoffResult{
		MonthsToPayoff: months,
		TotalInterest:  totalInterest,
		Converged:      balance <= 0,
	}, nil
}

// GrowthResult is the future value of an investment
type GrowthResult struct {
	FutureValue float64 `json:"future_value"`
}

// InvestmentGrowth compounds principal annually: principal × (1 + r/100)^years
func InvestmentGrowth(principal, annualReturnPct, years float64) (*GrowthResult, error) {
	if err := nonNegative(FuncInvestmentGrowth, "principal", principal); err != nil {
		return nil, err
	}
	if err := nonNegative(FuncInvestmentGrowth, "years", years); err != nil {
		return nil, err
	}
	if err := finite(FuncInvestmentGrowth, "annual_return_rate", annualReturnPct); err != nil {
		return nil, err
	}
	if annualReturnPct <= -100 {
		return nil, &DomainError{Function: FuncInvestmentGrowth, Param: "annual_return_rate",
			Err: errors.New("must be greater than -100")}
	}

	fv := principal * math.Pow(1+annualReturnPct/100, years)
	if err := finiteResult(FuncInvestmentGrowth, fv); err != nil {
		return nil, err
	}
	return &GrowthResult{FutureValue: fv}, nil
}

// MortgageResult is the level payment schedule of a fixed-rate loan
type MortgageResult struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalCost      float64 `json:"total_cost"`
	TotalInterest  float64 `json:"total_interest"`
}

func mortgageTerm(loan, annualRatePct, years float64) (float64, error) {
	if err := nonNegative(FuncMortgagePayment, "loan_amount", loan); err != nil {
		return 0, err
	}
	if err := nonNegative(FuncMortgagePayment, "annual_interest_rate", annualRatePct); err != nil {
		return 0, err
	}
	if err := finite(FuncMortgagePayment, "years", years); err != nil {
		return 0, err
	}
	if years <= 0 {
		return 0, &DomainError{Function: FuncMortgagePayment, Param: "years", Err: ErrNonPositiveTerm}
	}
	return years * 12, nil
}

// MortgagePayment applies the annuity formula with n = years×12 periods and
// r = rate/12/100. A zero rate returns ErrZeroRate.
func MortgagePayment(loan, annualRatePct, years float64) (*MortgageResult, error) {
	n, err := mortgageTerm(loan, annualRatePct, years)
	if err != nil {
		return nil, err
	}
	if annualRatePct == 0 {
		return nil, &DomainError{Function: FuncMortgagePayment, Param: "annual_interest_rate", Err: ErrZeroRate}
	}

	r := annualRatePct / 12 / 100
	growth := math.Pow(1+r, n)
	payment := loan * r * growth / (growth - 1)
	totalCost := payment * n
	if err := finiteResult(FuncMortgagePayment, payment, totalCost); err != nil {
		return nil, err
	}

	return &MortgageResult{
		MonthlyPayment: payment,
		TotalCost:      totalCost,
		TotalInterest:  totalCost - loan,
	}, nil
}

// LinearMortgage is the interest-free case: principal / n per month
func LinearMortgage(loan, years float64) (*MortgageResult, error) {
	n, err := mortgageTerm(loan, 0, years)
	if err != nil {
		return nil, err
	}
	if err := finiteResult(FuncMortgagePayment, loan/n); err != nil {
		return nil, err
	}
	return &MortgageResult{
		MonthlyPayment: loan / n,
		TotalCost:      loan,
		TotalInterest:  0,
	}, nil
}
