package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// SumUnsettledAmountForUser implements storage.LedgerStore.
func (s *PostgresStore) SumUnsettledAmountForUser(ctx context.Context, userID string) (money.Money, error) {
	var cents int64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)::bigint
		FROM splits
		WHERE user_id = $1 AND NOT is_settled`,
		userID,
	).Scan(&cents)
	if err != nil {
		return money.Zero, fmt.Errorf("failed to sum owed amount: %w", err)
	}
	return money.FromMinor(cents), nil
}

// SumUnsettledAmountPaidByUser implements storage.LedgerStore.
func (s *PostgresStore) SumUnsettledAmountPaidByUser(ctx context.Context, userID string) (money.Money, error) {
	var cents int64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(s.amount_cents), 0)::bigint
		FROM splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.paid_by = $1 AND NOT s.is_settled`,
		userID,
	).Scan(&cents)
	if err != nil {
		return money.Zero, fmt.Errorf("failed to sum due amount: %w", err)
	}
	return money.FromMinor(cents), nil
}

// GetExpense implements storage.LedgerStore.
func (s *PostgresStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var cents int64
	err := s.pool.QueryRow(ctx, `
		SELECT e.id, e.description, e.paid_by, e.amount_cents, e.created_at,
		       COALESCE(array_agg(p.user_id ORDER BY p.position) FILTER (WHERE p.user_id IS NOT NULL), '{}')
		FROM expenses e
		LEFT JOIN expense_participants p ON p.expense_id = e.id
		WHERE e.id = $1
		GROUP BY e.id`,
		expenseID,
	).Scan(&expense.ID, &expense.Description, &expense.PaidBy, &cents, &expense.CreatedAt, &expense.SharedBetween)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.TotalAmount = money.FromMinor(cents)
	expense.CreatedAt = expense.CreatedAt.UTC()
	return expense, nil
}

// ListSplitsByExpense implements storage.LedgerStore.
func (s *PostgresStore) ListSplitsByExpense(ctx context.Context, expenseID string) ([]models.Split, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, expense_id, user_id, amount_cents, is_settled
		FROM splits
		WHERE expense_id = $1
		ORDER BY position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}

	splits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Split, error) {
		var sp models.Split
		var cents int64
		err := row.Scan(&sp.ID, &sp.ExpenseID, &sp.UserID, &cents, &sp.IsSettled)
		sp.Amount = money.FromMinor(cents)
		return sp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan splits: %w", err)
	}
	return splits, nil
}

const userSplitQuery = `
	SELECT s.id, s.expense_id, s.user_id, s.amount_cents, s.is_settled,
	       e.description, e.paid_by, e.amount_cents, e.created_at
	FROM splits s
	JOIN expenses e ON e.id = s.expense_id`

func scanUserSplit(row pgx.Row) (models.UserSplit, error) {
	var us models.UserSplit
	var amount, total int64
	var createdAt time.Time
	err := row.Scan(
		&us.ID, &us.ExpenseID, &us.UserID, &amount, &us.IsSettled,
		&us.Description, &us.PaidBy, &total, &createdAt,
	)
	us.Amount = money.FromMinor(amount)
	us.TotalAmount = money.FromMinor(total)
	us.CreatedAt = createdAt.UTC()
	return us, err
}

// ListSplitsByUser implements storage.LedgerStore.
func (s *PostgresStore) ListSplitsByUser(ctx context.Context, userID string) ([]models.UserSplit, error) {
	rows, err := s.pool.Query(ctx, userSplitQuery+`
		WHERE s.user_id = $1
		ORDER BY e.created_at DESC, e.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserSplit, error) {
		return scanUserSplit(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan splits: %w", err)
	}
	return out, nil
}

// GetSplit implements storage.LedgerStore.
func (s *PostgresStore) GetSplit(ctx context.Context, splitID string) (*models.UserSplit, error) {
	us, err := scanUserSplit(s.pool.QueryRow(ctx, userSplitQuery+" WHERE s.id = $1", splitID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return &us, nil
}

// SettleSplit implements storage.LedgerStore.
func (s *PostgresStore) SettleSplit(ctx context.Context, splitID string) error {
	tag, err := s.pool.Exec(ctx, "UPDATE splits SET is_settled = TRUE WHERE id = $1", splitID)
	if err != nil {
		return fmt.Errorf("failed to settle split: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	return nil
}
