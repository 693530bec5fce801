// Package postgres provides a PostgreSQL-backed implementation of storage.Store
// on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// New connects to the database at dsn and runs migrations.
func New(ctx context.Context, dsn string) (*PostgresStore, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	return &PostgresStore{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes every connection in the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// WithTransaction implements storage.LedgerStore.
func (s *PostgresStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx, now: s.now})
	})
}

type pgTx struct {
	tx  pgx.Tx
	now func() time.Time
}

func (t *pgTx) InsertExpense(ctx context.Context, draft models.ExpenseDraft) (*models.Expense, error) {
	expense := &models.Expense{
		ID:            uuid.New().String(),
		Description:   draft.Description,
		PaidBy:        draft.PaidBy,
		TotalAmount:   draft.TotalAmount,
		SharedBetween: append([]string(nil), draft.SharedBetween...),
		CreatedAt:     t.now().Truncate(time.Microsecond),
	}

	_, err := t.tx.Exec(ctx, `
		INSERT INTO expenses (id, description, paid_by, amount_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		expense.ID, expense.Description, expense.PaidBy, expense.TotalAmount.Minor(), expense.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert expense: %w", mapError(err))
	}

	if len(expense.SharedBetween) > 0 {
		positions := make([]int32, len(expense.SharedBetween))
		for i := range positions {
			positions[i] = int32(i)
		}
		_, err = t.tx.Exec(ctx, `
			INSERT INTO expense_participants (expense_id, user_id, position)
			SELECT $1, u.user_id, u.position
			FROM unnest($2::text[], $3::int[]) AS u(user_id, position)`,
			expense.ID, expense.SharedBetween, positions,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert participants: %w", mapError(err))
		}
	}

	return expense, nil
}

func (t *pgTx) InsertSplits(ctx context.Context, drafts []models.SplitDraft) ([]models.Split, error) {
	splits := make([]models.Split, 0, len(drafts))
	batch := &pgx.Batch{}
	for i, d := range drafts {
		split := models.Split{
			ID:        uuid.New().String(),
			ExpenseID: d.ExpenseID,
			UserID:    d.UserID,
			Amount:    d.Amount,
			IsSettled: d.IsSettled,
		}
		batch.Queue(`
			INSERT INTO splits (id, expense_id, user_id, amount_cents, is_settled, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			split.ID, split.ExpenseID, split.UserID, split.Amount.Minor(), split.IsSettled, i,
		)
		splits = append(splits, split)
	}

	results := t.tx.SendBatch(ctx, batch)
	for range drafts {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return nil, fmt.Errorf("failed to insert split: %w", mapError(err))
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("failed to insert splits: %w", mapError(err))
	}
	return splits, nil
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %w", storage.ErrConflict, err)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %w", storage.ErrNotFound, err)
		}
	}
	return err
}
