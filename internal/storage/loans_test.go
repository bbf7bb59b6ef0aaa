package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoan(id, name string) *model.Loan {
	return &model.Loan{
		ID:                id,
		Name:              name,
		Principal:         10000,
		AnnualRatePercent: 6,
		TermMonths:        12,
		Balance:           10000,
	}
}

func TestSaveLoan_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	loan := testLoan("loan-1", "Car")
	require.NoError(t, store.SaveLoan(ctx, loan))
	assert.False(t, loan.CreatedAt.IsZero())

	got, err := store.GetLoan(ctx, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, "Car", got.Name)
	assert.Equal(t, 10000.0, got.Principal)
	assert.Equal(t, 6.0, got.AnnualRatePercent)
	assert.Equal(t, 12, got.TermMonths)
	assert.Equal(t, 10000.0, got.Balance)

	byName, err := store.GetLoan(ctx, "Car")
	require.NoError(t, err)
	assert.Equal(t, "loan-1", byName.ID)
}

func TestSaveLoan_DuplicateName(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveLoan(ctx, testLoan("loan-1", "Car")))
	err := store.SaveLoan(ctx, testLoan("loan-2", "Car"))
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestSaveLoan_Invalid(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	tests := []struct {
		mutate func(*model.Loan)
		name   string
	}{
		{name: "missing id", mutate: func(l *model.Loan) { l.ID = "" }},
		{name: "missing name", mutate: func(l *model.Loan) { l.Name = " " }},
		{name: "negative principal", mutate: func(l *model.Loan) { l.Principal = -1 }},
		{name: "negative rate", mutate: func(l *model.Loan) { l.AnnualRatePercent = -0.5 }},
		{name: "zero term", mutate: func(l *model.Loan) { l.TermMonths = 0 }},
		{name: "balance above principal", mutate: func(l *model.Loan) { l.Balance = 20000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := testLoan("loan-x", "X")
			tt.mutate(loan)
			assert.ErrorIs(t, store.SaveLoan(ctx, loan), model.ErrInvalidLoan)
		})
	}

	assert.ErrorIs(t, store.SaveLoan(ctx, nil), ErrNilParameter)
}

func TestUpdateLoanBalance(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	require.NoError(t, store.SaveLoan(ctx, testLoan("loan-1", "Car")))

	require.NoError(t, store.UpdateLoanBalance(ctx, "Car", 9189.34))
	got, err := store.GetLoan(ctx, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, 9189.34, got.Balance)

	assert.ErrorIs(t, store.UpdateLoanBalance(ctx, "loan-1", -5), model.ErrInvalidLoan)
	assert.ErrorIs(t, store.UpdateLoanBalance(ctx, "missing", 5), common.ErrNotFound)
}

func TestGetLoans_AndDelete(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveLoan(ctx, testLoan("loan-1", "Car")))
	mortgage := testLoan("loan-2", "Mortgage")
	mortgage.Principal, mortgage.Balance, mortgage.TermMonths = 250000, 240000, 360
	require.NoError(t, store.SaveLoan(ctx, mortgage))

	loans, err := store.GetLoans(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, 250000.0, model.TotalDebt(loans))

	require.NoError(t, store.DeleteLoan(ctx, "loan-1"))
	loans, err = store.GetLoans(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, "Mortgage", loans[0].Name)

	assert.ErrorIs(t, store.DeleteLoan(ctx, "loan-1"), common.ErrNotFound)
}
