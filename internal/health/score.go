// Package health computes a 0-100 financial health score from one month of activity.
package health

import (
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/bankpulse/internal/model"
)

// Status is a qualitative label attached to each factor.
type Status string

const (
	// StatusExcellent is the best rating.
	StatusExcellent Status = "excellent"
	// StatusGood is above average.
	StatusGood Status = "good"
	// StatusFair needs attention.
	StatusFair Status = "fair"
	// StatusPoor needs action.
	StatusPoor Status = "poor"
)

// Factor names, in scoring order.
const (
	FactorSavingsRate     = "Savings Rate"
	FactorSpendingControl = "Spending Control"
	FactorEmergencyFund   = "Emergency Fund"
	FactorDebtManagement  = "Debt Management"
	FactorConsistency     = "Financial Consistency"
)

// Factor weights in percent. They must sum to 100.
const (
	WeightSavingsRate     = 30
	WeightSpendingControl = 25
	WeightEmergencyFund   = 20
	WeightDebtManagement  = 15
	WeightConsistency     = 10
)

// ConsistencyPlaceholderScore is the fixed score of the consistency factor.
// No data-driven computation exists for it yet.
const ConsistencyPlaceholderScore = 75

// Factor is one weighted component of the overall score.
type Factor struct {
	Name        string `json:"name"`
	Status      Status `json:"status"`
	Description string `json:"description"`
	Score       int    `json:"score"`
	Weight      int    `json:"weight"`
}

// Result is the composite score and its factor breakdown.
type Result struct {
	Period   time.Time `json:"period"`
	Factors  []Factor  `json:"factors"`
	Income   float64   `json:"income"`
	Expenses float64   `json:"expenses"`
	Overall  int       `json:"overall_score"`
}

// Grade labels the overall score.
func (r Result) Grade() Status {
	return statusAtLeast(float64(r.Overall), 80, 60, 40)
}

// Totals aggregates one month of income and expenses.
type Totals struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// MonthlyTotals sums credits as income and debits as expenses for the given month.
// Failed transactions are ignored.
func MonthlyTotals(transactions []model.Transaction, year int, month time.Month) Totals {
	var totals Totals
	for _, txn := range transactions {
		if txn.Status == model.StatusFailed {
			continue
		}
		d := txn.Date.UTC()
		if d.Year() != year || d.Month() != month {
			continue
		}
		switch txn.Type {
		case model.TypeCredit:
			totals.Income += math.Abs(txn.Amount)
		case model.TypeDebit:
			totals.Expenses += math.Abs(txn.Amount)
		}
	}
	return totals
}

// Scorer computes health scores relative to the current month.
type Scorer struct {
	Now func() time.Time
}

// NewScorer creates a scorer that uses the wall clock.
func NewScorer() *Scorer {
	return &Scorer{Now: time.Now}
}

// Score rates the current month using the wall clock.
func Score(transactions []model.Transaction, accountBalance, totalDebt float64) Result {
	return NewScorer().Score(transactions, accountBalance, totalDebt)
}

// Score rates the month containing s.Now().
func (s *Scorer) Score(transactions []model.Transaction, accountBalance, totalDebt float64) Result {
	now := s.Now().UTC()
	totals := MonthlyTotals(transactions, now.Year(), now.Month())
	return Evaluate(totals, accountBalance, totalDebt, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// Evaluate scores precomputed monthly totals.
func Evaluate(totals Totals, accountBalance, totalDebt float64, period time.Time) Result {
	factors := []Factor{
		savingsRateFactor(totals),
		spendingControlFactor(totals),
		emergencyFundFactor(totals, accountBalance),
		debtManagementFactor(totals, totalDebt),
		consistencyFactor(),
	}

	weighted := 0
	for _, f := range factors {
		weighted += f.Score * f.Weight
	}

	return Result{
		Period:   period,
		Factors:  factors,
		Income:   totals.Income,
		Expenses: totals.Expenses,
		Overall:  clampScore(float64(weighted) / 100),
	}
}

func savingsRateFactor(t Totals) Factor {
	rate := 0.0
	if t.Income > 0 {
		rate = (t.Income - t.Expenses) / t.Income * 100
	}
	return Factor{
		Name:        FactorSavingsRate,
		Weight:      WeightSavingsRate,
		Score:       clampScore(rate * 4),
		Status:      statusAtLeast(rate, 20, 10, 5),
		Description: fmt.Sprintf("Saving %.1f%% of income this month", rate),
	}
}

func spendingControlFactor(t Totals) Factor {
	if t.Income <= 0 {
		return Factor{
			Name:        FactorSpendingControl,
			Weight:      WeightSpendingControl,
			Score:       50,
			Status:      StatusFair,
			Description: "No income recorded this month",
		}
	}

	ratio := t.Expenses / t.Income
	status := StatusPoor
	switch {
	case ratio <= 0.7:
		status = StatusExcellent
	case ratio <= 0.85:
		status = StatusGood
	case ratio <= 1.0:
		status = StatusFair
	}

	return Factor{
		Name:        FactorSpendingControl,
		Weight:      WeightSpendingControl,
		Score:       clampScore((1 - ratio) * 100),
		Status:      status,
		Description: fmt.Sprintf("Spending %.0f%% of income", ratio*100),
	}
}

func emergencyFundFactor(t Totals, balance float64) Factor {
	f := Factor{
		Name:   FactorEmergencyFund,
		Weight: WeightEmergencyFund,
	}

	if t.Expenses <= 0 {
		if balance > 0 {
			f.Score = 100
			f.Status = StatusExcellent
			f.Description = "No expenses recorded this month"
		} else {
			f.Status = StatusPoor
			f.Description = "No savings on hand"
		}
		return f
	}

	months := balance / t.Expenses
	f.Score = clampScore(balance / (t.Expenses * 3) * 100)
	f.Status = statusAtLeast(months, 6, 3, 1)
	f.Description = fmt.Sprintf("Balance covers %.1f months of expenses", months)
	return f
}

func debtManagementFactor(t Totals, debt float64) Factor {
	f := Factor{
		Name:   FactorDebtManagement,
		Weight: WeightDebtManagement,
	}

	switch {
	case debt <= 0:
		f.Score = 100
		f.Description = "No outstanding debt"
	case t.Income <= 0:
		f.Score = 0
		f.Description = "Outstanding debt with no income this month"
	default:
		f.Score = clampScore(100 - math.Round(debt/t.Income*10))
		f.Description = fmt.Sprintf("Debt is %.1fx monthly income", debt/t.Income)
	}
	f.Status = statusAtLeast(float64(f.Score), 90, 70, 50)
	return f
}

func consistencyFactor() Factor {
	return Factor{
		Name:        FactorConsistency,
		Weight:      WeightConsistency,
		Score:       ConsistencyPlaceholderScore,
		Status:      StatusGood,
		Description: "Placeholder score; not yet derived from data",
	}
}

// clampScore rounds to the nearest integer and bounds the result to [0, 100].
func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

// statusAtLeast maps v onto the four labels using descending thresholds.
func statusAtLeast(v, excellent, good, fair float64) Status {
	switch {
	case v >= excellent:
		return StatusExcellent
	case v >= good:
		return StatusGood
	case v >= fair:
		return StatusFair
	default:
		return StatusPoor
	}
}
