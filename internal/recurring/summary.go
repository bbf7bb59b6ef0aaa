package recurring

// Summary totals a set of recurring charges.
type Summary struct {
	Count        int     `json:"count"`
	MonthlyTotal float64 `json:"monthly_total"`
	YearlyTotal  float64 `json:"yearly_total"`
}

// MonthlyEquivalent normalises a charge to its average cost per month.
// Charges with an Unknown frequency contribute nothing.
func MonthlyEquivalent(c Charge) float64 {
	return c.AverageAmount * c.Frequency.periodsPerYear() / 12
}

// Summarize totals the monthly and yearly cost of the charges.
func Summarize(charges []Charge) Summary {
	s := Summary{Count: len(charges)}
	for _, c := range charges {
		s.MonthlyTotal += MonthlyEquivalent(c)
	}
	s.YearlyTotal = s.MonthlyTotal * 12
	return s
}
