package models

import (
	"time"

	"github.com/mmynk/splitledger/internal/money"
)

// ExpenseDraft is an expense as submitted by a caller, before it is persisted.
type ExpenseDraft struct {
	// Description is a short human-readable label (e.g., "Groceries").
	Description string

	// PaidBy is the user who paid the full amount.
	PaidBy string

	// TotalAmount is the full amount paid.
	TotalAmount money.Money

	// SharedBetween lists the users sharing the expense with the payer,
	// excluding the payer. The order is significant: leftover cents are
	// handed out in this order after the payer.
	SharedBetween []string
}

// Expense is a persisted expense.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	Description   string
	PaidBy        string
	TotalAmount   money.Money
	SharedBetween []string

	// CreatedAt is assigned by the store when the expense is inserted.
	CreatedAt time.Time

	// Splits are the debt records created together with the expense.
	// Only populated when the expense is returned from a write.
	Splits []Split
}

// Participants returns the payer followed by the sharers in supplied order.
func (e *Expense) Participants() []string {
	out := make([]string, 0, len(e.SharedBetween)+1)
	out = append(out, e.PaidBy)
	return append(out, e.SharedBetween...)
}
