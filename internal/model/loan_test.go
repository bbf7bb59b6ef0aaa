package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoanValidate(t *testing.T) {
	valid := Loan{Name: "Car", Principal: 10000, AnnualRatePercent: 6, TermMonths: 12, Balance: 4000}

	tests := []struct {
		mutate  func(*Loan)
		name    string
		wantErr bool
	}{
		{name: "valid", mutate: func(*Loan) {}},
		{name: "zero rate", mutate: func(l *Loan) { l.AnnualRatePercent = 0 }},
		{name: "paid off", mutate: func(l *Loan) { l.Balance = 0 }},
		{name: "blank name", mutate: func(l *Loan) { l.Name = "  " }, wantErr: true},
		{name: "negative principal", mutate: func(l *Loan) { l.Principal = -1 }, wantErr: true},
		{name: "negative rate", mutate: func(l *Loan) { l.AnnualRatePercent = -2 }, wantErr: true},
		{name: "zero term", mutate: func(l *Loan) { l.TermMonths = 0 }, wantErr: true},
		{name: "balance above principal", mutate: func(l *Loan) { l.Balance = 10001 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid
			tt.mutate(&l)
			err := l.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLoan)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTotals(t *testing.T) {
	assert.Equal(t, 6000.0, TotalDebt([]Loan{{Balance: 4000}, {Balance: 2000}}))
	assert.Zero(t, TotalDebt(nil))
	assert.Equal(t, 750.0, TotalBalance([]Account{{Balance: 1000}, {Balance: -250}}))
}
