package middleware

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/idempotency"
	"github.com/mmynk/splitledger/pkg/api"
)

// IdempotencyInterceptor makes RecordExpense safe to retry. A request with an
// Idempotency-Key header reserves the key for the caller before the expense
// is written; reusing the key fails with AlreadyExists. A failed call
// releases its key so the client can retry with it. Requests without the
// header and other procedures pass through.
func IdempotencyInterceptor(store idempotency.Store, logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().Procedure != api.ExpenseServiceRecordExpenseProcedure {
				return next(ctx, req)
			}
			header := req.Header().Get(api.IdempotencyKeyHeader)
			if header == "" {
				return next(ctx, req)
			}
			key := GetUserID(ctx) + ":" + header

			if err := store.Reserve(ctx, key); err != nil {
				if errors.Is(err, idempotency.ErrDuplicateKey) {
					return nil, connect.NewError(connect.CodeAlreadyExists, err)
				}
				logger.ErrorContext(ctx, "Idempotency store unavailable", "error", err)
				return nil, connect.NewError(connect.CodeUnavailable, err)
			}

			resp, err := next(ctx, req)
			if err != nil {
				// The request context may already be done; release regardless.
				if relErr := store.Release(context.WithoutCancel(ctx), key); relErr != nil {
					logger.WarnContext(ctx, "Failed to release idempotency key", "key", header, "error", relErr)
				}
				return nil, err
			}

			result := ""
			if out, ok := resp.Any().(*api.RecordExpenseResponse); ok && out.Expense != nil {
				result = out.Expense.ID
			}
			if err := store.Complete(ctx, key, result); err != nil {
				logger.WarnContext(ctx, "Failed to complete idempotency key", "key", header, "error", err)
			}
			return resp, nil
		}
	}
}
