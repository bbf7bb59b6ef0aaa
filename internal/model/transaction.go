// Package model defines the core records shared between the transaction source and the analytics packages.
package model

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errors returned when parsing transaction enumerations.
var (
	ErrInvalidTransactionType   = errors.New("invalid transaction type")
	ErrInvalidTransactionStatus = errors.New("invalid transaction status")
)

// TransactionType describes what kind of movement a transaction represents.
type TransactionType string

const (
	// TypePurchase is a card purchase at a merchant.
	TypePurchase TransactionType = "purchase"
	// TypePayment is a payment toward a card or loan balance.
	TypePayment TransactionType = "payment"
	// TypeCredit is money coming into an account.
	TypeCredit TransactionType = "credit"
	// TypeDebit is money leaving an account.
	TypeDebit TransactionType = "debit"
)

// TransactionStatus is the settlement state reported by the source.
type TransactionStatus string

const (
	// StatusCompleted indicates the transaction has settled.
	StatusCompleted TransactionStatus = "completed"
	// StatusPending indicates the transaction is authorized but not posted.
	StatusPending TransactionStatus = "pending"
	// StatusFailed indicates the transaction was declined or reversed.
	StatusFailed TransactionStatus = "failed"
)

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date         time.Time
	ID           string
	Name         string // Raw transaction description
	MerchantName string // Counterparty display name, used for grouping
	AccountID    string
	Hash         string
	Type         TransactionType
	Status       TransactionStatus
	Amount       float64 // Signed; sign convention follows Type
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IsCompletedPurchase reports whether the transaction is a settled card purchase.
func (t *Transaction) IsCompletedPurchase() bool {
	return t.Type == TypePurchase && t.Status == StatusCompleted
}

// ParseTransactionType converts a case-insensitive name into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TypePurchase:
		return TypePurchase, nil
	case TypePayment:
		return TypePayment, nil
	case TypeCredit:
		return TypeCredit, nil
	case TypeDebit:
		return TypeDebit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, s)
	}
}

// ParseTransactionStatus converts a case-insensitive name into a TransactionStatus.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusPending:
		return StatusPending, nil
	case StatusFailed:
		return StatusFailed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionStatus, s)
	}
}
