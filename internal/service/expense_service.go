// Package service implements the splitledger.v1 Connect services on top of
// the ledger core and the storage backends.
package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// ExpenseRecorder records an expense with its splits.
type ExpenseRecorder interface {
	RecordExpense(ctx context.Context, draft models.ExpenseDraft) (*models.Expense, error)
}

// BalanceReader computes a user's balance.
type BalanceReader interface {
	GetBalance(ctx context.Context, userID string) (models.Balance, error)
}

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	recorder ExpenseRecorder
	balances BalanceReader
	store    storage.LedgerStore
	logger   *slog.Logger
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(recorder ExpenseRecorder, balances BalanceReader, store storage.LedgerStore, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{
		recorder: recorder,
		balances: balances,
		store:    store,
		logger:   logger,
	}
}

// RecordExpense records an expense paid by the caller unless paid_by says otherwise.
func (s *ExpenseService) RecordExpense(ctx context.Context, req *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error) {
	total, err := money.Parse(req.Msg.TotalAmount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	paidBy := req.Msg.PaidBy
	if paidBy == "" {
		paidBy = middleware.GetUserID(ctx)
	}

	expense, err := s.recorder.RecordExpense(ctx, models.ExpenseDraft{
		Description:   req.Msg.Description,
		PaidBy:        paidBy,
		TotalAmount:   total,
		SharedBetween: req.Msg.SharedBetween,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RecordExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetBalance returns the balance of the requested user, or of the caller.
func (s *ExpenseService) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	userID := req.Msg.UserID
	if userID == "" {
		userID = middleware.GetUserID(ctx)
	}

	balance, err := s.balances.GetBalance(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetBalanceResponse{
		UserID:  userID,
		Balance: toAPIBalance(balance),
	}), nil
}

// ListMySplits returns every split the caller owes, newest expense first.
func (s *ExpenseService) ListMySplits(ctx context.Context, req *connect.Request[api.ListMySplitsRequest]) (*connect.Response[api.ListMySplitsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errNoUser)
	}

	splits, err := s.store.ListSplitsByUser(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "ListSplitsByUser failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.UserSplit, 0, len(splits))
	for _, sp := range splits {
		out = append(out, toAPIUserSplit(sp))
	}
	return connect.NewResponse(&api.ListMySplitsResponse{Splits: out}), nil
}

// SettleSplit marks a split as paid. Only the debtor or the payer of the
// expense may settle it. Settling a settled split succeeds without change.
func (s *ExpenseService) SettleSplit(ctx context.Context, req *connect.Request[api.SettleSplitRequest]) (*connect.Response[api.SettleSplitResponse], error) {
	userID := middleware.GetUserID(ctx)

	split, err := s.store.GetSplit(ctx, req.Msg.SplitID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if userID != split.UserID && userID != split.PaidBy {
		return nil, toConnectError(errNotParticipant)
	}

	if !split.IsSettled {
		if err := s.store.SettleSplit(ctx, split.ID); err != nil {
			s.logger.ErrorContext(ctx, "SettleSplit failed", "split_id", split.ID, "error", err)
			return nil, toConnectError(err)
		}
		split.IsSettled = true
		s.logger.InfoContext(ctx, "Split settled",
			"split_id", split.ID,
			"debtor", split.UserID,
			"payer", split.PaidBy,
			"amount", split.Amount.String(),
		)
	}

	out := toAPIUserSplit(*split)
	return connect.NewResponse(&api.SettleSplitResponse{Split: &out}), nil
}
