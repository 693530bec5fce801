package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/calculator"
)

var (
	// ErrInvalidExpense reports an expense draft that cannot be recorded.
	// Nothing has been written when it is returned.
	ErrInvalidExpense = errors.New("invalid expense")

	// ErrInvalidParticipantSet reports a participant set the split
	// calculator cannot partition.
	ErrInvalidParticipantSet = calculator.ErrInvalidParticipantSet

	// ErrInvalidBalanceQuery reports a balance request without a user.
	ErrInvalidBalanceQuery = errors.New("invalid balance query")

	// ErrLedgerWrite reports a failed or rolled back transaction.
	// No durable state change occurred and the call may be retried.
	ErrLedgerWrite = errors.New("ledger write failed")

	// ErrLedgerRead reports a failed aggregate read.
	ErrLedgerRead = errors.New("ledger read failed")
)

// ValidationError describes which input field was rejected and why.
// It unwraps to ErrInvalidExpense or ErrInvalidBalanceQuery.
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", e.kind, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.kind
}

func invalidExpense(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, kind: ErrInvalidExpense}
}

func writeError(err error) error {
	return fmt.Errorf("%w: %w", ErrLedgerWrite, err)
}

func readError(err error) error {
	return fmt.Errorf("%w: %w", ErrLedgerRead, err)
}
