package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	errNoUser         = errors.New("user_id required")
	errNotParticipant = errors.New("only the debtor or the payer may settle a split")
	errNotAdmin       = errors.New("only the group admin may delete a group")
)

// toConnectError maps domain errors onto Connect codes. Anything
// unrecognised is reported as Internal.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, ledger.ErrInvalidExpense),
		errors.Is(err, ledger.ErrInvalidParticipantSet),
		errors.Is(err, ledger.ErrInvalidBalanceQuery),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrAmountOverflow),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ledger.ErrLedgerWrite), errors.Is(err, ledger.ErrLedgerRead):
		return connect.NewError(connect.CodeInternal, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict), errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, errNotParticipant), errors.Is(err, errNotAdmin):
		return connect.NewError(connect.CodePermissionDenied, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
