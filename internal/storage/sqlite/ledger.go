package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// SumUnsettledAmountForUser implements storage.LedgerStore.
func (s *SQLiteStore) SumUnsettledAmountForUser(ctx context.Context, userID string) (money.Money, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM splits WHERE user_id = ? AND is_settled = 0",
		userID,
	).Scan(&cents)
	if err != nil {
		return money.Zero, fmt.Errorf("failed to sum owed amount: %w", err)
	}
	return money.FromMinor(cents), nil
}

// SumUnsettledAmountPaidByUser implements storage.LedgerStore.
func (s *SQLiteStore) SumUnsettledAmountPaidByUser(ctx context.Context, userID string) (money.Money, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(s.amount_cents), 0)
		FROM splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.paid_by = ? AND s.is_settled = 0`,
		userID,
	).Scan(&cents)
	if err != nil {
		return money.Zero, fmt.Errorf("failed to sum due amount: %w", err)
	}
	return money.FromMinor(cents), nil
}

// GetExpense retrieves an expense by ID, including its participants in supplied order.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var cents, createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, description, paid_by, amount_cents, created_at FROM expenses WHERE id = ?",
		expenseID,
	).Scan(&expense.ID, &expense.Description, &expense.PaidBy, &cents, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.TotalAmount = money.FromMinor(cents)
	expense.CreatedAt = time.UnixMilli(createdAt).UTC()

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM expense_participants WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		expense.SharedBetween = append(expense.SharedBetween, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return expense, nil
}

// ListSplitsByExpense implements storage.LedgerStore.
func (s *SQLiteStore) ListSplitsByExpense(ctx context.Context, expenseID string) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, expense_id, user_id, amount_cents, is_settled FROM splits WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var sp models.Split
		var cents int64
		if err := rows.Scan(&sp.ID, &sp.ExpenseID, &sp.UserID, &cents, &sp.IsSettled); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		sp.Amount = money.FromMinor(cents)
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

const userSplitColumns = `
	SELECT s.id, s.expense_id, s.user_id, s.amount_cents, s.is_settled,
	       e.description, e.paid_by, e.amount_cents, e.created_at
	FROM splits s
	JOIN expenses e ON e.id = s.expense_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanUserSplit(row scanner) (models.UserSplit, error) {
	var us models.UserSplit
	var amount, total, createdAt int64
	err := row.Scan(
		&us.ID, &us.ExpenseID, &us.UserID, &amount, &us.IsSettled,
		&us.Description, &us.PaidBy, &total, &createdAt,
	)
	if err != nil {
		return us, err
	}
	us.Amount = money.FromMinor(amount)
	us.TotalAmount = money.FromMinor(total)
	us.CreatedAt = time.UnixMilli(createdAt).UTC()
	return us, nil
}

// ListSplitsByUser implements storage.LedgerStore.
func (s *SQLiteStore) ListSplitsByUser(ctx context.Context, userID string) ([]models.UserSplit, error) {
	rows, err := s.db.QueryContext(ctx,
		userSplitColumns+" WHERE s.user_id = ? ORDER BY e.created_at DESC, e.id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var out []models.UserSplit
	for rows.Next() {
		us, err := scanUserSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		out = append(out, us)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return out, nil
}

// GetSplit implements storage.LedgerStore.
func (s *SQLiteStore) GetSplit(ctx context.Context, splitID string) (*models.UserSplit, error) {
	us, err := scanUserSplit(s.db.QueryRowContext(ctx, userSplitColumns+" WHERE s.id = ?", splitID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return &us, nil
}

// SettleSplit implements storage.LedgerStore.
func (s *SQLiteStore) SettleSplit(ctx context.Context, splitID string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE splits SET is_settled = 1 WHERE id = ?", splitID)
	if err != nil {
		return fmt.Errorf("failed to settle split: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	return nil
}
