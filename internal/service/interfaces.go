// Package service defines the contracts between the CLI and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/bankpulse/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// Zero values mean "no constraint".
type TransactionFilter struct {
	StartDate *time.Time // inclusive
	EndDate   *time.Time // exclusive
	Type      model.TransactionType
	Status    model.TransactionStatus
	Limit     int
	Offset    int
}

// Storage is the local transaction source and the home of accounts and loans.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionCount(ctx context.Context) (int, error)

	// Account operations
	UpsertAccounts(ctx context.Context, accounts []model.Account) error
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)

	// Loan operations
	SaveLoan(ctx context.Context, loan *model.Loan) error
	GetLoans(ctx context.Context) ([]model.Loan, error)
	GetLoan(ctx context.Context, id string) (*model.Loan, error)
	UpdateLoanBalance(ctx context.Context, id string, balance float64) error
	DeleteLoan(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TransactionFetcher pulls transactions and balances from a remote institution.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
}

// RetryOptions configures retry behavior.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
