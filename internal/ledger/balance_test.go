package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/storage/memory"
)

func TestGetBalance(t *testing.T) {
	store := memory.New()
	svc := NewExpenseService(store)
	agg := NewBalanceAggregator(store)
	ctx := context.Background()

	_, err := svc.RecordExpense(ctx, draft("Dinner", "alice", "100.00", "bob", "carol"))
	require.NoError(t, err)
	_, err = svc.RecordExpense(ctx, draft("Groceries", "bob", "90.00", "alice", "carol", "dave"))
	require.NoError(t, err)

	tests := []struct {
		user           string
		owed, due, net      string
	}{
		{"alice", "22.50", "66.66", "44.16"},
		{"bob", "33.33", "67.50", "34.17"},
		{"carol", "55.83", "0.00", "-55.83"},
		{"dave", "22.50", "0.00", "-22.50"},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			b, err := agg.GetBalance(ctx, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.owed, b.Owed.String())
			assert.Equal(t, tt.due, b.Due.String())
			assert.Equal(t, tt.net, b.Net.String())
		})
	}
}

func TestGetBalance_UnknownUserIsZero(t *testing.T) {
	agg := NewBalanceAggregator(memory.New())

	b, err := agg.GetBalance(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, b.Owed.IsZero())
	assert.True(t, b.Due.IsZero())
	assert.True(t, b.Net.IsZero())
}

func TestGetBalance_SettledSplitsExcluded(t *testing.T) {
	store := memory.New()
	svc := NewExpenseService(store)
	agg := NewBalanceAggregator(store)
	ctx := context.Background()

	expense, err := svc.RecordExpense(ctx, draft("Rent", "alice", "50.00", "bob"))
	require.NoError(t, err)
	require.NoError(t, store.SettleSplit(ctx, expense.Splits[1].ID))

	b, err := agg.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, b.Due.IsZero())

	b, err = agg.GetBalance(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, b.Owed.IsZero())
}

func TestGetBalance_EmptyUser(t *testing.T) {
	store := memory.New()
	agg := NewBalanceAggregator(store)

	_, err := agg.GetBalance(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBalanceQuery)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "user_id", verr.Field)
	assert.Zero(t, store.Calls(memory.OpSumOwed))
}

func TestGetBalance_ReadFailure(t *testing.T) {
	for _, op := range []memory.Op{memory.OpSumOwed, memory.OpSumDue} {
		t.Run(string(op), func(t *testing.T) {
			store := memory.New()
			store.FailOn(op, errors.New("timeout"))
			agg := NewBalanceAggregator(store)

			b, err := agg.GetBalance(context.Background(), "alice")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLedgerRead)
			assert.Zero(t, b)
		})
	}
}

func TestGetBalance_Metrics(t *testing.T) {
	m := &recordingMetrics{}
	agg := NewBalanceAggregator(memory.New(), WithMetrics(m))

	_, _ = agg.GetBalance(context.Background(), "alice")
	_, _ = agg.GetBalance(context.Background(), "")

	assert.Equal(t, []string{OutcomeOK, OutcomeInvalid}, m.reads)
}
