// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
//
// The database runs in WAL mode and every transaction takes the write lock
// up front, so concurrent writers queue on the busy timeout instead of
// failing with SQLITE_BUSY halfway through.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dataSourceName(dbPath)
	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func dataSourceName(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WithTransaction implements storage.LedgerStore.
func (s *SQLiteStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rolls back on error, panic, or a cancelled ctx; a no-op after Commit.
	defer tx.Rollback()

	if err := fn(ctx, &sqliteTx{tx: tx, now: s.now}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type sqliteTx struct {
	tx  *sql.Tx
	now func() time.Time
}

func (t *sqliteTx) InsertExpense(ctx context.Context, draft models.ExpenseDraft) (*models.Expense, error) {
	expense := &models.Expense{
		ID:            uuid.New().String(),
		Description:   draft.Description,
		PaidBy:        draft.PaidBy,
		TotalAmount:   draft.TotalAmount,
		SharedBetween: append([]string(nil), draft.SharedBetween...),
		CreatedAt:     t.now().Truncate(time.Millisecond),
	}

	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO expenses (id, description, paid_by, amount_cents, created_at) VALUES (?, ?, ?, ?, ?)",
		expense.ID, expense.Description, expense.PaidBy, expense.TotalAmount.Minor(), expense.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert expense: %w", mapError(err))
	}

	for i, userID := range expense.SharedBetween {
		_, err = t.tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id, position) VALUES (?, ?, ?)",
			expense.ID, userID, i,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert participant: %w", mapError(err))
		}
	}

	return expense, nil
}

func (t *sqliteTx) InsertSplits(ctx context.Context, drafts []models.SplitDraft) ([]models.Split, error) {
	stmt, err := t.tx.PrepareContext(ctx,
		"INSERT INTO splits (id, expense_id, user_id, amount_cents, is_settled, position) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare split insert: %w", err)
	}
	defer stmt.Close()

	splits := make([]models.Split, 0, len(drafts))
	for i, d := range drafts {
		split := models.Split{
			ID:        uuid.New().String(),
			ExpenseID: d.ExpenseID,
			UserID:    d.UserID,
			Amount:    d.Amount,
			IsSettled: d.IsSettled,
		}
		if _, err := stmt.ExecContext(ctx, split.ID, split.ExpenseID, split.UserID, split.Amount.Minor(), split.IsSettled, i); err != nil {
			return nil, fmt.Errorf("failed to insert split: %w", mapError(err))
		}
		splits = append(splits, split)
	}
	return splits, nil
}

// mapError translates driver errors into storage sentinels where one applies.
func mapError(err error) error {
	var serr *msqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %w", storage.ErrConflict, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %w", storage.ErrNotFound, err)
		}
	}
	return err
}
