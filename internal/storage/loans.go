package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/model"
)

const loanColumns = `id, name, principal, annual_rate, term_months, balance, created_at`

// SaveLoan inserts a new loan. Names are unique.
func (s *SQLiteStorage) SaveLoan(ctx context.Context, loan *model.Loan) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLoan(loan); err != nil {
		return err
	}
	if loan.CreatedAt.IsZero() {
		loan.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO loans (`+loanColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		loan.ID,
		loan.Name,
		loan.Principal,
		loan.AnnualRatePercent,
		loan.TermMonths,
		loan.Balance,
		loan.CreatedAt.UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("loan %q: %w", loan.Name, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save loan: %w", err)
	}
	return nil
}

// GetLoans returns all loans, oldest first.
func (s *SQLiteStorage) GetLoans(ctx context.Context) ([]model.Loan, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	loans := []model.Loan{}
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loans: %w", err)
	}
	return loans, nil
}

// GetLoan looks a loan up by ID, falling back to an exact name match.
func (s *SQLiteStorage) GetLoan(ctx context.Context, id string) (*model.Loan, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = ? OR name = ? ORDER BY id = ? DESC LIMIT 1`, id, id, id)
	loan, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loan %s: %w", id, common.ErrNotFound)
	}
	return loan, err
}

// UpdateLoanBalance records a new outstanding balance.
func (s *SQLiteStorage) UpdateLoanBalance(ctx context.Context, id string, balance float64) error {
	loan, err := s.GetLoan(ctx, id)
	if err != nil {
		return err
	}
	loan.Balance = balance
	if err := loan.Validate(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE loans SET balance = ? WHERE id = ?`, balance, loan.ID); err != nil {
		return fmt.Errorf("failed to update loan balance: %w", err)
	}
	return nil
}

// DeleteLoan removes a loan.
func (s *SQLiteStorage) DeleteLoan(ctx context.Context, id string) error {
	loan, err := s.GetLoan(ctx, id)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM loans WHERE id = ?`, loan.ID)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*model.Loan, error) {
	var loan model.Loan
	err := row.Scan(
		&loan.ID,
		&loan.Name,
		&loan.Principal,
		&loan.AnnualRatePercent,
		&loan.TermMonths,
		&loan.Balance,
		&loan.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}
	loan.CreatedAt = loan.CreatedAt.UTC()
	return &loan, nil
}
