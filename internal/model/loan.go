package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidLoan is returned when loan terms fail validation.
var ErrInvalidLoan = errors.New("invalid loan")

// Loan is a fixed-rate installment loan tracked by the user.
type Loan struct {
	CreatedAt         time.Time `json:"created_at"`
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Principal         float64   `json:"principal"`
	AnnualRatePercent float64   `json:"annual_rate_percent"`
	Balance           float64   `json:"balance"` // Outstanding principal
	TermMonths        int       `json:"term_months"`
}

// Validate checks the loan terms. The amortization math assumes these hold.
func (l *Loan) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidLoan)
	}
	if l.Principal < 0 {
		return fmt.Errorf("%w: principal must be non-negative", ErrInvalidLoan)
	}
	if l.AnnualRatePercent < 0 {
		return fmt.Errorf("%w: rate must be non-negative", ErrInvalidLoan)
	}
	if l.TermMonths <= 0 {
		return fmt.Errorf("%w: term must be positive", ErrInvalidLoan)
	}
	if l.Balance < 0 || l.Balance > l.Principal {
		return fmt.Errorf("%w: balance must be between 0 and principal", ErrInvalidLoan)
	}
	return nil
}

// TotalDebt sums the outstanding balances of the given loans.
func TotalDebt(loans []Loan) float64 {
	total := 0.0
	for _, l := range loans {
		total += l.Balance
	}
	return total
}
