// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// Tx is the write side of a ledger transaction. Every call made through a Tx
// commits or rolls back together.
type Tx interface {
	// InsertExpense persists the draft and returns it with ID and CreatedAt assigned.
	InsertExpense(ctx context.Context, draft models.ExpenseDraft) (*models.Expense, error)

	// InsertSplits persists the drafts and returns them with IDs assigned,
	// in the same order.
	InsertSplits(ctx context.Context, drafts []models.SplitDraft) ([]models.Split, error)
}

// LedgerStore is durable storage for expenses and their splits.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the ledger services.
type LedgerStore interface {
	// WithTransaction runs fn inside one transaction. The transaction commits
	// only if fn returns nil; it is rolled back if fn returns an error, panics,
	// or ctx is cancelled before commit.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// SumUnsettledAmountForUser sums the unsettled splits owed by userID.
	// Returns zero when there are none.
	SumUnsettledAmountForUser(ctx context.Context, userID string) (money.Money, error)

	// SumUnsettledAmountPaidByUser sums the unsettled splits of expenses paid
	// by userID. Returns zero when there are none.
	SumUnsettledAmountPaidByUser(ctx context.Context, userID string) (money.Money, error)

	// GetExpense retrieves an expense by ID. Returns ErrNotFound if missing.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListSplitsByExpense returns an expense's splits, payer first.
	ListSplitsByExpense(ctx context.Context, expenseID string) ([]models.Split, error)

	// ListSplitsByUser returns every split owed by userID joined with its expense,
	// newest expense first.
	ListSplitsByUser(ctx context.Context, userID string) ([]models.UserSplit, error)

	// GetSplit retrieves a split with its expense. Returns ErrNotFound if missing.
	GetSplit(ctx context.Context, splitID string) (*models.UserSplit, error)

	// SettleSplit marks a split as settled. Settling a settled split is a no-op.
	// Returns ErrNotFound if missing.
	SettleSplit(ctx context.Context, splitID string) error
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a user. Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup persists a new group, assigning ID and CreatedAt when unset.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
	// ListGroupsByMember returns the groups userID belongs to, newest first.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)
}

// Store is everything a storage backend provides.
type Store interface {
	LedgerStore
	UserStore
	GroupStore

	// Close releases any resources held by the store.
	Close() error
}
