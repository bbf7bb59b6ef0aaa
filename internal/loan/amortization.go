// Package loan computes fixed-rate amortization figures.
//
// Inputs are not validated here: callers must reject negative principals,
// negative rates and non-positive terms before calling (see model.Loan.Validate).
package loan

import (
	"math"

	"github.com/shopspring/decimal"
)

// Breakdown splits one payment into its principal and interest portions.
type Breakdown struct {
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
}

// Installment is one row of an amortization schedule.
type Installment struct {
	Number    int     `json:"number"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// Summary describes the total cost of a loan.
type Summary struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPaid      float64 `json:"total_paid"`
	TotalInterest  float64 `json:"total_interest"`
}

// MonthlyRate converts an annual percentage rate into a monthly fraction.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 100 / 12
}

// MonthlyPayment returns the fixed payment that retires principal over termMonths,
// rounded to cents. A zero rate pays the principal off in equal parts.
func MonthlyPayment(principal, annualRatePercent float64, termMonths int) float64 {
	r := MonthlyRate(annualRatePercent)
	n := float64(termMonths)

	var payment float64
	if r == 0 {
		payment = principal / n
	} else {
		payment = principal * r / (1 - math.Pow(1+r, -n))
	}
	return roundCents(payment)
}

// PaymentBreakdown splits a payment against the outstanding balance. Principal is
// capped at the balance and never negative, even when interest exceeds the payment.
func PaymentBreakdown(balance, monthlyPayment, annualRatePercent float64) Breakdown {
	interest := balance * MonthlyRate(annualRatePercent)
	principal := math.Min(monthlyPayment-interest, balance)
	return Breakdown{
		Principal: math.Max(principal, 0),
		Interest:  interest,
	}
}

// Schedule builds the full amortization table. Each row is rounded to cents and
// the last installment absorbs whatever balance the rounded payments leave behind.
func Schedule(principal, annualRatePercent float64, termMonths int) []Installment {
	payment := MonthlyPayment(principal, annualRatePercent, termMonths)
	balance := decimal.NewFromFloat(principal).Round(2)

	installments := make([]Installment, 0, max(termMonths, 0))
	for n := 1; n <= termMonths && balance.IsPositive(); n++ {
		split := PaymentBreakdown(balance.InexactFloat64(), payment, annualRatePercent)

		interest := decimal.NewFromFloat(split.Interest).Round(2)
		paid := decimal.NewFromFloat(split.Principal).Round(2)
		if n == termMonths || paid.GreaterThan(balance) {
			paid = balance
		}
		balance = balance.Sub(paid)

		installments = append(installments, Installment{
			Number:    n,
			Payment:   paid.Add(interest).InexactFloat64(),
			Principal: paid.InexactFloat64(),
			Interest:  interest.InexactFloat64(),
			Balance:   balance.InexactFloat64(),
		})
	}
	return installments
}

// Summarize totals the schedule for a loan.
func Summarize(principal, annualRatePercent float64, termMonths int) Summary {
	totalPaid := decimal.Zero
	totalInterest := decimal.Zero
	for _, inst := range Schedule(principal, annualRatePercent, termMonths) {
		totalPaid = totalPaid.Add(decimal.NewFromFloat(inst.Payment))
		totalInterest = totalInterest.Add(decimal.NewFromFloat(inst.Interest))
	}
	return Summary{
		MonthlyPayment: MonthlyPayment(principal, annualRatePercent, termMonths),
		TotalPaid:      totalPaid.InexactFloat64(),
		TotalInterest:  totalInterest.InexactFloat64(),
	}
}

// roundCents rounds half away from zero. Non-finite values pass through so that
// precondition violations surface as Inf or NaN instead of a panic.
func roundCents(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
