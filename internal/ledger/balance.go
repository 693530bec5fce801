package ledger

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// BalanceAggregator computes user balances from unsettled splits.
type BalanceAggregator struct {
	store   storage.LedgerStore
	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

// NewBalanceAggregator creates a BalanceAggregator reading from store.
func NewBalanceAggregator(store storage.LedgerStore, opts ...Option) *BalanceAggregator {
	c := newConfig(opts)
	return &BalanceAggregator{
		store:   store,
		logger:  c.logger,
		metrics: c.metrics,
		tracer:  c.tracer,
	}
}

// GetBalance returns what userID owes, what they are owed, and the net of the two.
// The owed and due sums are read concurrently. A user with no splits has a
// zero balance. If either read fails, ErrLedgerRead is returned and no
// partial balance.
func (a *BalanceAggregator) GetBalance(ctx context.Context, userID string) (models.Balance, error) {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "ledger.GetBalance", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	if userID == "" {
		err := &ValidationError{Field: "user_id", Reason: "must not be empty", kind: ErrInvalidBalanceQuery}
		a.metrics.ObserveBalance(OutcomeInvalid, time.Since(start))
		span.SetStatus(codes.Error, err.Error())
		return models.Balance{}, err
	}

	var owed, due money.Money
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owed, err = a.store.SumUnsettledAmountForUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		due, err = a.store.SumUnsettledAmountPaidByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		err = readError(err)
		a.logger.ErrorContext(ctx, "Failed to read balance", "user_id", userID, "error", err)
		a.metrics.ObserveBalance(OutcomeError, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.Balance{}, err
	}

	balance := models.NewBalance(owed, due)
	a.logger.DebugContext(ctx, "Balance computed",
		"user_id", userID,
		"owed", balance.Owed.String(),
		"due", balance.Due.String(),
		"net", balance.Net.String(),
	)
	a.metrics.ObserveBalance(OutcomeOK, time.Since(start))
	return balance, nil
}
