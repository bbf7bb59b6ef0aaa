package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/Veraticus/bankpulse/internal/health"
	"github.com/Veraticus/bankpulse/internal/loan"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/Veraticus/bankpulse/internal/recurring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		want string
		in   float64
	}{
		{in: 0, want: "$0.00"},
		{in: 15.99, want: "$15.99"},
		{in: 860.655, want: "$860.66"},
		{in: -250, want: "-$250.00"},
		{in: 1234567.8, want: "$1234567.80"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.in))
	}
}

func TestRenderCharges(t *testing.T) {
	var buf bytes.Buffer
	charges := []recurring.Charge{
		{
			Merchant:        "Netflix",
			AverageAmount:   15.99,
			Frequency:       recurring.FrequencyMonthly,
			OccurrenceCount: 3,
			TotalPaid:       47.97,
			LastDate:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			NextDate:        time.Date(2024, 4, 14, 12, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, RenderCharges(&buf, charges))
	out := buf.String()
	assert.Contains(t, out, "Recurring Charges")
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "$15.99")
	assert.Contains(t, out, "Monthly")
	assert.Contains(t, out, "$47.97")
	assert.Contains(t, out, "Apr 14, 2024")
	assert.Contains(t, out, "1 recurring charges")
}

func TestRenderCharges_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCharges(&buf, nil))
	assert.Contains(t, buf.String(), "No recurring charges detected")
}

func TestRenderLoanSummaryAndSchedule(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderLoanSummary(&buf, 10000, 6, 12, loan.Summarize(10000, 6, 12)))
	require.NoError(t, RenderSchedule(&buf, loan.Schedule(10000, 6, 12)))

	out := buf.String()
	assert.Contains(t, out, "$860.66")
	assert.Contains(t, out, "$327.96")
	assert.Contains(t, out, "6% APR")
	assert.Contains(t, out, "$9189.34")
	assert.Contains(t, out, "$860.70")
}

func TestRenderBreakdown(t *testing.T) {
	var buf bytes.Buffer
	l := model.Loan{Name: "Car", Balance: 10000}
	require.NoError(t, RenderBreakdown(&buf, l, 860.66, loan.PaymentBreakdown(10000, 860.66, 6)))

	out := buf.String()
	assert.Contains(t, out, "Car: next payment")
	assert.Contains(t, out, "$810.66")
	assert.Contains(t, out, "$50.00")
}

func TestRenderLoansAndAccounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderLoans(&buf, []model.Loan{
		{ID: "l1", Name: "Car", Principal: 10000, AnnualRatePercent: 6.5, TermMonths: 12, Balance: 4000},
	}))
	require.NoError(t, RenderAccounts(&buf, []model.Account{
		{ID: "chk", Name: "Checking", Balance: 1500, UpdatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}))

	out := buf.String()
	assert.Contains(t, out, "6.5%")
	assert.Contains(t, out, "Total outstanding: $4000.00")
	assert.Contains(t, out, "Total balance: $1500.00")
	assert.Contains(t, out, "May 1, 2024")

	buf.Reset()
	require.NoError(t, RenderLoans(&buf, nil))
	require.NoError(t, RenderAccounts(&buf, nil))
	assert.Contains(t, buf.String(), "No loans recorded")
	assert.Contains(t, buf.String(), "No accounts recorded")
}

func TestRenderHealth(t *testing.T) {
	var buf bytes.Buffer
	result := health.Evaluate(health.Totals{Income: 5000, Expenses: 4000}, 6000, 0,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, RenderHealth(&buf, result))
	out := buf.String()
	assert.Contains(t, out, "62/100")
	assert.Contains(t, out, "GOOD")
	assert.Contains(t, out, "May 2024")
	assert.Contains(t, out, health.FactorSavingsRate)
	assert.Contains(t, out, health.FactorConsistency)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, loan.Summarize(10000, 6, 12)))

	var decoded map[string]float64
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.InDelta(t, 860.66, decoded["monthly_payment"], 1e-9)
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 2, "Importing", false)
	p.Step("a.ofx")
	p.Step("b.ofx")
	p.Done()
	assert.NotEmpty(t, buf.String())

	quiet := NewProgress(&buf, 1, "Importing", true)
	buf.Reset()
	quiet.Step("")
	quiet.Done()
	assert.Empty(t, buf.String())
}
