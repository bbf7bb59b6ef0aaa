// Package testutil provides shared test helpers for bankpulse packages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/Veraticus/bankpulse/internal/storage"
)

// TestDB is a migrated in-memory database for a single test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory database, migrates it and closes it on cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.SeedTransactions(fixtures.NewBuilder(t).Purchase("Netflix", 15.99, day).Build())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedTransactions saves transactions or fails the test.
func (db *TestDB) SeedTransactions(txns []model.Transaction) {
	db.t.Helper()
	if _, err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}

// SeedAccounts upserts accounts or fails the test.
func (db *TestDB) SeedAccounts(accounts ...model.Account) {
	db.t.Helper()
	if err := db.Storage.UpsertAccounts(context.Background(), accounts); err != nil {
		db.t.Fatalf("failed to seed accounts: %v", err)
	}
}

// SeedLoans saves loans or fails the test.
func (db *TestDB) SeedLoans(loans ...model.Loan) {
	db.t.Helper()
	for i := range loans {
		if err := db.Storage.SaveLoan(context.Background(), &loans[i]); err != nil {
			db.t.Fatalf("failed to seed loan %q: %v", loans[i].Name, err)
		}
	}
}
