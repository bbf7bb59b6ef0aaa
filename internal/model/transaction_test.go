package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHash(t *testing.T) {
	base := Transaction{
		ID:           "a",
		Date:         time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		MerchantName: "Netflix",
		AccountID:    "chk",
		Amount:       -15.99,
	}

	same := base
	same.ID = "b"
	same.Date = time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, base.GenerateHash(), same.GenerateHash(), "ID and time of day are not part of the hash")

	other := base
	other.Amount = -16.49
	assert.NotEqual(t, base.GenerateHash(), other.GenerateHash())
	assert.Len(t, base.GenerateHash(), 64)
}

func TestIsCompletedPurchase(t *testing.T) {
	tests := []struct {
		txnType TransactionType
		status  TransactionStatus
		want    bool
	}{
		{TypePurchase, StatusCompleted, true},
		{TypePurchase, StatusPending, false},
		{TypeDebit, StatusCompleted, false},
		{TypeCredit, StatusCompleted, false},
	}

	for _, tt := range tests {
		txn := Transaction{Type: tt.txnType, Status: tt.status}
		assert.Equal(t, tt.want, txn.IsCompletedPurchase(), "%s/%s", tt.txnType, tt.status)
	}
}

func TestParseTransactionType(t *testing.T) {
	for _, in := range []string{"purchase", " Purchase ", "PAYMENT", "credit", "debit"} {
		_, err := ParseTransactionType(in)
		require.NoError(t, err, in)
	}

	got, err := ParseTransactionType("Credit")
	require.NoError(t, err)
	assert.Equal(t, TypeCredit, got)

	_, err = ParseTransactionType("refund")
	assert.ErrorIs(t, err, ErrInvalidTransactionType)
}

func TestParseTransactionStatus(t *testing.T) {
	got, err := ParseTransactionStatus("PENDING")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got)

	_, err = ParseTransactionStatus("")
	assert.ErrorIs(t, err, ErrInvalidTransactionStatus)
}
