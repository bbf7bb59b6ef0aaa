// Package fixtures builds transaction snapshots for tests.
//
// Example usage:
//
//	txns := fixtures.NewBuilder(t).
//		Series("Netflix", fixtures.Date(2024, 1, 1), 30*24*time.Hour, 15.99, 15.99, 16.49).
//		Credit(5000, fixtures.Date(2024, 1, 15)).
//		Build()
package fixtures

import (
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/bankpulse/internal/model"
)

// DefaultAccountID is assigned to every built transaction unless overridden.
const DefaultAccountID = "acct-checking"

// Date returns midnight UTC for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Builder accumulates transactions with sequential IDs.
type Builder struct {
	t         *testing.T
	accountID string
	txns      []model.Transaction
	seq       int
}

// NewBuilder creates an empty builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t, accountID: DefaultAccountID}
}

// WithAccount sets the account for transactions added afterwards.
func (b *Builder) WithAccount(accountID string) *Builder {
	b.accountID = accountID
	return b
}

// Add appends a transaction, filling ID, account, status and hash when empty.
func (b *Builder) Add(txn model.Transaction) *Builder {
	b.t.Helper()
	b.seq++
	if txn.ID == "" {
		txn.ID = fmt.Sprintf("txn-%03d", b.seq)
	}
	if txn.AccountID == "" {
		txn.AccountID = b.accountID
	}
	if txn.Status == "" {
		txn.Status = model.StatusCompleted
	}
	if txn.Name == "" {
		txn.Name = txn.MerchantName
	}
	if txn.Hash == "" {
		txn.Hash = txn.GenerateHash()
	}
	b.txns = append(b.txns, txn)
	return b
}

// Purchase adds a completed card purchase. Amounts are stored negative.
func (b *Builder) Purchase(merchant string, amount float64, date time.Time) *Builder {
	b.t.Helper()
	return b.Add(model.Transaction{
		MerchantName: merchant,
		Amount:       -amount,
		Date:         date,
		Type:         model.TypePurchase,
	})
}

// Series adds one purchase per amount, spaced by every.
func (b *Builder) Series(merchant string, start time.Time, every time.Duration, amounts ...float64) *Builder {
	b.t.Helper()
	for i, amount := range amounts {
		b.Purchase(merchant, amount, start.Add(time.Duration(i)*every))
	}
	return b
}

// Credit adds completed income.
func (b *Builder) Credit(amount float64, date time.Time) *Builder {
	b.t.Helper()
	return b.Add(model.Transaction{
		MerchantName: "Payroll",
		Amount:       amount,
		Date:         date,
		Type:         model.TypeCredit,
	})
}

// Debit adds a completed expense. Amounts are stored negative.
func (b *Builder) Debit(merchant string, amount float64, date time.Time) *Builder {
	b.t.Helper()
	return b.Add(model.Transaction{
		MerchantName: merchant,
		Amount:       -amount,
		Date:         date,
		Type:         model.TypeDebit,
	})
}

// Build returns a copy of the accumulated transactions.
func (b *Builder) Build() []model.Transaction {
	out := make([]model.Transaction, len(b.txns))
	copy(out, b.txns)
	return out
}
