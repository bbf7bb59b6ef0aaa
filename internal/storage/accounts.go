package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/model"
)

// UpsertAccounts inserts or replaces account balances. A zero UpdatedAt is stamped with the current time.
func (s *SQLiteStorage) UpsertAccounts(ctx context.Context, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range accounts {
		if err := validateAccount(&accounts[i]); err != nil {
			return fmt.Errorf("account at index %d: %w", i, err)
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, account := range accounts {
			updatedAt := account.UpdatedAt
			if updatedAt.IsZero() {
				updatedAt = time.Now()
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO accounts (id, name, balance, updated_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					name = CASE WHEN excluded.name != '' THEN excluded.name ELSE accounts.name END,
					balance = excluded.balance,
					updated_at = excluded.updated_at
			`, account.ID, account.Name, account.Balance, updatedAt.UTC())
			if err != nil {
				return fmt.Errorf("failed to upsert account %s: %w", account.ID, err)
			}
		}
		return nil
	})
}

// GetAccounts returns all accounts ordered by ID.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, balance, updated_at FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	accounts := []model.Account{}
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.UpdatedAt = a.UpdatedAt.UTC()
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount retrieves one account.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var a model.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, balance, updated_at FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Balance, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}
