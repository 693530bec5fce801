package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ExpenseService records expenses together with their splits.
type ExpenseService struct {
	store   storage.LedgerStore
	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

// NewExpenseService creates an ExpenseService writing to store.
func NewExpenseService(store storage.LedgerStore, opts ...Option) *ExpenseService {
	c := newConfig(opts)
	return &ExpenseService{
		store:   store,
		logger:  c.logger,
		metrics: c.metrics,
		tracer:  c.tracer,
	}
}

// RecordExpense validates draft, then inserts the expense and one split per
// participant in a single transaction. The returned expense carries its
// splits, payer first.
//
// Validation failures return ErrInvalidExpense before the store is touched.
// Any store failure, including cancellation of ctx, returns ErrLedgerWrite
// and leaves no trace of the expense.
func (s *ExpenseService) RecordExpense(ctx context.Context, draft models.ExpenseDraft) (*models.Expense, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "ledger.RecordExpense", trace.WithAttributes(
		attribute.String("expense.paid_by", draft.PaidBy),
		attribute.Int64("expense.total_minor", draft.TotalAmount.Minor()),
		attribute.Int("expense.sharers", len(draft.SharedBetween)),
	))
	defer span.End()

	draft.Description = strings.TrimSpace(draft.Description)
	if err := ValidateDraft(draft); err != nil {
		s.logger.WarnContext(ctx, "Rejected expense", "paid_by", draft.PaidBy, "error", err)
		s.metrics.ObserveRecord(OutcomeInvalid, 0, time.Since(start))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var recorded *models.Expense
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		expense, err := tx.InsertExpense(ctx, draft)
		if err != nil {
			return err
		}

		drafts, err := calculator.ComputeSplits(expense.ID, expense.TotalAmount, expense.PaidBy, expense.SharedBetween)
		if err != nil {
			return err
		}

		splits, err := tx.InsertSplits(ctx, drafts)
		if err != nil {
			return err
		}

		expense.Splits = splits
		recorded = expense
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidParticipantSet) {
			err = writeError(err)
		}
		s.logger.ErrorContext(ctx, "Failed to record expense", "paid_by", draft.PaidBy, "error", err)
		s.metrics.ObserveRecord(OutcomeError, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("expense.id", recorded.ID))
	s.logger.InfoContext(ctx, "Expense recorded",
		"expense_id", recorded.ID,
		"paid_by", recorded.PaidBy,
		"total", recorded.TotalAmount.String(),
		"splits", len(recorded.Splits),
	)
	s.metrics.ObserveRecord(OutcomeOK, len(recorded.Splits), time.Since(start))
	return recorded, nil
}

// ValidateDraft checks an expense draft without touching storage.
func ValidateDraft(draft models.ExpenseDraft) error {
	if strings.TrimSpace(draft.Description) == "" {
		return invalidExpense("description", "must not be empty")
	}
	if draft.PaidBy == "" {
		return invalidExpense("paid_by", "must not be empty")
	}
	if !draft.TotalAmount.IsPositive() {
		return invalidExpense("total_amount", "must be greater than zero")
	}
	if len(draft.SharedBetween) == 0 {
		return invalidExpense("shared_between", "must name at least one user besides the payer")
	}

	seen := make(map[string]bool, len(draft.SharedBetween))
	for _, id := range draft.SharedBetween {
		switch {
		case id == "":
			return invalidExpense("shared_between", "must not contain empty user ids")
		case id == draft.PaidBy:
			return invalidExpense("shared_between", "must not contain the payer")
		case seen[id]:
			return invalidExpense("shared_between", "must not contain duplicates")
		}
		seen[id] = true
	}
	return nil
}
