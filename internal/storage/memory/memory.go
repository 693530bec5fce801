// Package memory provides an in-memory implementation of storage.Store.
//
// It is safe for concurrent use and honours the transaction contract of
// storage.LedgerStore: writes made through a Tx are staged on a copy of the
// ledger and only become visible when the transaction function returns nil.
// Data is lost on restart. Intended for tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Op names a store operation for call counting and failure injection.
type Op string

const (
	OpInsertExpense Op = "InsertExpense"
	OpInsertSplits  Op = "InsertSplits"
	OpCommit        Op = "Commit"
	OpSumOwed       Op = "SumUnsettledAmountForUser"
	OpSumDue        Op = "SumUnsettledAmountPaidByUser"
)

type ledger struct {
	expenses map[string]*models.Expense
	splits   []models.Split
}

func (l *ledger) clone() *ledger {
	c := &ledger{
		expenses: make(map[string]*models.Expense, len(l.expenses)),
		splits:   make([]models.Split, len(l.splits)),
	}
	for id, e := range l.expenses {
		c.expenses[id] = e
	}
	copy(c.splits, l.splits)
	return c
}

// Store is an in-memory storage.Store.
type Store struct {
	now func() time.Time

	mu     sync.RWMutex
	ledger *ledger
	users  map[string]*models.User
	groups map[string]*models.Group

	hooksMu  sync.Mutex
	failures map[Op]error
	calls    map[Op]int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for CreatedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		now:      func() time.Time { return time.Now().UTC() },
		ledger:   &ledger{expenses: make(map[string]*models.Expense)},
		users:    make(map[string]*models.User),
		groups:   make(map[string]*models.Group),
		failures: make(map[Op]error),
		calls:    make(map[Op]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (s *Store) FailOn(op Op, err error) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Calls returns how many times op has been invoked.
func (s *Store) Calls(op Op) int {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	return s.calls[op]
}

func (s *Store) enter(op Op) error {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.calls[op]++
	return s.failures[op]
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// WithTransaction implements storage.LedgerStore.
// fn must not call other Store methods; the store lock is held while it runs.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, staged: s.ledger.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	if err := s.enter(OpCommit); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.ledger = tx.staged
	return nil
}

type memTx struct {
	store  *Store
	staged *ledger
}

func (t *memTx) InsertExpense(ctx context.Context, draft models.ExpenseDraft) (*models.Expense, error) {
	if err := t.store.enter(OpInsertExpense); err != nil {
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}

	expense := &models.Expense{
		ID:            uuid.New().String(),
		Description:   draft.Description,
		PaidBy:        draft.PaidBy,
		TotalAmount:   draft.TotalAmount,
		SharedBetween: append([]string(nil), draft.SharedBetween...),
		CreatedAt:     t.store.now(),
	}
	t.staged.expenses[expense.ID] = expense

	out := *expense
	return &out, nil
}

func (t *memTx) InsertSplits(ctx context.Context, drafts []models.SplitDraft) ([]models.Split, error) {
	if err := t.store.enter(OpInsertSplits); err != nil {
		return nil, fmt.Errorf("failed to insert splits: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to insert splits: %w", err)
	}

	out := make([]models.Split, 0, len(drafts))
	for _, d := range drafts {
		if _, ok := t.staged.expenses[d.ExpenseID]; !ok {
			return nil, fmt.Errorf("failed to insert split: expense %s: %w", d.ExpenseID, storage.ErrNotFound)
		}
		split := models.Split{
			ID:        uuid.New().String(),
			ExpenseID: d.ExpenseID,
			UserID:    d.UserID,
			Amount:    d.Amount,
			IsSettled: d.IsSettled,
		}
		t.staged.splits = append(t.staged.splits, split)
		out = append(out, split)
	}
	return out, nil
}

func (s *Store) rows() []calculator.LedgerRow {
	rows := make([]calculator.LedgerRow, 0, len(s.ledger.splits))
	for _, sp := range s.ledger.splits {
		rows = append(rows, calculator.LedgerRow{
			UserID:    sp.UserID,
			PaidBy:    s.ledger.expenses[sp.ExpenseID].PaidBy,
			Amount:    sp.Amount,
			IsSettled: sp.IsSettled,
		})
	}
	return rows
}

// SumUnsettledAmountForUser implements storage.LedgerStore.
func (s *Store) SumUnsettledAmountForUser(ctx context.Context, userID string) (money.Money, error) {
	if err := s.enter(OpSumOwed); err != nil {
		return money.Zero, fmt.Errorf("failed to sum owed amount: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calculator.SumOwed(s.rows(), userID), nil
}

// SumUnsettledAmountPaidByUser implements storage.LedgerStore.
func (s *Store) SumUnsettledAmountPaidByUser(ctx context.Context, userID string) (money.Money, error) {
	if err := s.enter(OpSumDue); err != nil {
		return money.Zero, fmt.Errorf("failed to sum due amount: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calculator.SumDue(s.rows(), userID), nil
}

// GetExpense implements storage.LedgerStore.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.ledger.expenses[expenseID]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	out := *e
	out.SharedBetween = append([]string(nil), e.SharedBetween...)
	return &out, nil
}

// ListSplitsByExpense implements storage.LedgerStore.
func (s *Store) ListSplitsByExpense(ctx context.Context, expenseID string) ([]models.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Split
	for _, sp := range s.ledger.splits {
		if sp.ExpenseID == expenseID {
			out = append(out, sp)
		}
	}
	return out, nil
}

// ListSplitsByUser implements storage.LedgerStore.
func (s *Store) ListSplitsByUser(ctx context.Context, userID string) ([]models.UserSplit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.UserSplit
	for _, sp := range s.ledger.splits {
		if sp.UserID == userID {
			out = append(out, s.joinSplit(sp))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetSplit implements storage.LedgerStore.
func (s *Store) GetSplit(ctx context.Context, splitID string) (*models.UserSplit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sp := range s.ledger.splits {
		if sp.ID == splitID {
			us := s.joinSplit(sp)
			return &us, nil
		}
	}
	return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
}

// SettleSplit implements storage.LedgerStore.
func (s *Store) SettleSplit(ctx context.Context, splitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.ledger.splits {
		if s.ledger.splits[i].ID == splitID {
			s.ledger.splits[i].IsSettled = true
			return nil
		}
	}
	return fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
}

func (s *Store) joinSplit(sp models.Split) models.UserSplit {
	e := s.ledger.expenses[sp.ExpenseID]
	return models.UserSplit{
		Split:       sp,
		Description: e.Description,
		PaidBy:      e.PaidBy,
		TotalAmount: e.TotalAmount,
		CreatedAt:   e.CreatedAt,
	}
}
