package models

import (
	"time"

	"github.com/mmynk/splitledger/internal/money"
)

// SplitDraft is one participant's share of an expense, before it is persisted.
// UserID is the person who owes Amount.
type SplitDraft struct {
	ExpenseID string
	UserID    string
	Amount    money.Money
	IsSettled bool
}

// Split is a persisted per-participant debt record.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	ExpenseID string
	UserID    string
	Amount    money.Money
	IsSettled bool
}

// UserSplit is a split joined with the expense it belongs to.
type UserSplit struct {
	Split

	Description string
	PaidBy      string
	TotalAmount money.Money
	CreatedAt   time.Time
}

// Balance is a user's position in the ledger, derived from unsettled splits.
type Balance struct {
	// Owed is what the user still has to pay others.
	Owed money.Money

	// Due is what others still have to pay the user.
	Due money.Money

	// Net is Due - Owed. Positive means the user is owed more than they owe.
	Net money.Money
}

// NewBalance builds a Balance from its two aggregates.
func NewBalance(owed, due money.Money) Balance {
	return Balance{Owed: owed, Due: due, Net: due.Sub(owed)}
}
