package ledger

import (
	"context"
	"errors"
	"sync"
	"time"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

func draft(desc, payer, total string, sharers ...string) models.ExpenseDraft {
	return models.ExpenseDraft{
		Description:   desc,
		PaidBy:        payer,
		TotalAmount:   money.MustParse(total),
		SharedBetween: sharers,
	}
}

func TestRecordExpense(t *testing.T) {
	store := memory.New()
	svc := NewExpenseService(store)
	ctx := context.Background()

	expense, err := svc.RecordExpense(ctx, draft("  Dinner  ", "alice", "100.00", "bob", "carol"))
	require.NoError(t, err)

	assert.NotEmpty(t, expense.ID)
	assert.Equal(t, "Dinner", expense.Description)
	assert.False(t, expense.CreatedAt.IsZero())
	require.Len(t, expense.Splits, 3)

	want := []struct {
		user    string
		minor   int64
		settled bool
	}{
		{"alice", 3334, true},
		{"bob", 3333, false},
		{"carol", 3333, false},
	}
	for i, w := range want {
		s := expense.Splits[i]
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, expense.ID, s.ExpenseID)
		assert.Equal(t, w.user, s.UserID)
		assert.Equal(t, w.minor, s.Amount.Minor())
		assert.Equal(t, w.settled, s.IsSettled)
	}

	stored, err := store.GetExpense(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, stored.SharedBetween)

	splits, err := store.ListSplitsByExpense(ctx, expense.ID)
	require.NoError(t, err)
	assert.Len(t, splits, 3)
}

func TestRecordExpense_Validation(t *testing.T) {
	tests := []struct {
		name  string
		draft models.ExpenseDraft
		field string
	}{
		{"empty description", draft("", "alice", "10.00", "bob"), "description"},
		{"blank description", draft("   ", "alice", "10.00", "bob"), "description"},
		{"missing payer", draft("Taxi", "", "10.00", "bob"), "paid_by"},
		{"zero total", draft("Taxi", "alice", "0", "bob"), "total_amount"},
		{"negative total", draft("Taxi", "alice", "-5.00", "bob"), "total_amount"},
		{"no sharers", draft("Taxi", "alice", "10.00"), "shared_between"},
		{"payer among sharers", draft("Taxi", "alice", "10.00", "bob", "alice"), "shared_between"},
		{"duplicate sharer", draft("Taxi", "alice", "10.00", "bob", "bob"), "shared_between"},
		{"blank sharer", draft("Taxi", "alice", "10.00", ""), "shared_between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			svc := NewExpenseService(store)

			_, err := svc.RecordExpense(context.Background(), tt.draft)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidExpense)
			assert.NotErrorIs(t, err, ErrLedgerWrite)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)

			assert.Zero(t, store.Calls(memory.OpInsertExpense), "store must not be touched")
		})
	}
}

func TestRecordExpense_SplitInsertFailureRollsBack(t *testing.T) {
	store := memory.New()
	store.FailOn(memory.OpInsertSplits, errors.New("disk full"))
	svc := NewExpenseService(store)
	ctx := context.Background()

	_, err := svc.RecordExpense(ctx, draft("Hotel", "alice", "300.00", "bob"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLedgerWrite)
	assert.Equal(t, 1, store.Calls(memory.OpInsertExpense))

	owed, err := store.SumUnsettledAmountForUser(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, owed.IsZero())

	due, err := store.SumUnsettledAmountPaidByUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, due.IsZero())
}

func TestRecordExpense_CommitFailure(t *testing.T) {
	store := memory.New()
	store.FailOn(memory.OpCommit, errors.New("connection reset"))
	svc := NewExpenseService(store)

	_, err := svc.RecordExpense(context.Background(), draft("Hotel", "alice", "300.00", "bob"))
	assert.ErrorIs(t, err, ErrLedgerWrite)

	store.FailOn(memory.OpCommit, nil)
	_, err = svc.RecordExpense(context.Background(), draft("Hotel", "alice", "300.00", "bob"))
	assert.NoError(t, err)
}

func TestRecordExpense_CancelledContext(t *testing.T) {
	store := memory.New()
	svc := NewExpenseService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RecordExpense(ctx, draft("Lunch", "alice", "20.00", "bob"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLedgerWrite)
	assert.ErrorIs(t, err, context.Canceled)

	owed, err := store.SumUnsettledAmountForUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, owed.IsZero())
}

func TestRecordExpense_ConcurrentWritesKeepTotals(t *testing.T) {
	store := memory.New()
	svc := NewExpenseService(store)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordExpense(ctx, draft("Coffee", "alice", "10.00", "bob", "carol"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// 10.00 three ways: 3.34 for alice, 3.33 each for bob and carol.
	due, err := store.SumUnsettledAmountPaidByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(writers*666), due.Minor())
}

func TestRecordExpense_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	svc := NewExpenseService(memory.New(), WithTracer(provider.Tracer("test")))

	_, err := svc.RecordExpense(context.Background(), draft("Cab", "alice", "12.00", "bob"))
	require.NoError(t, err)
	_, err = svc.RecordExpense(context.Background(), draft("", "alice", "12.00", "bob"))
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "ledger.RecordExpense", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

type recordingMetrics struct {
	mu      sync.Mutex
	records []string
	splits  int
	reads   []string
}

func (m *recordingMetrics) ObserveRecord(outcome string, splits int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, outcome)
	m.splits += splits
}

func (m *recordingMetrics) ObserveBalance(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, outcome)
}

func TestRecordExpense_Metrics(t *testing.T) {
	store := memory.New()
	m := &recordingMetrics{}
	svc := NewExpenseService(store, WithMetrics(m))
	ctx := context.Background()

	_, err := svc.RecordExpense(ctx, draft("Cab", "alice", "12.00", "bob", "carol"))
	require.NoError(t, err)
	_, _ = svc.RecordExpense(ctx, draft("Cab", "alice", "0", "bob"))
	store.FailOn(memory.OpInsertExpense, errors.New("boom"))
	_, _ = svc.RecordExpense(ctx, draft("Cab", "alice", "12.00", "bob"))

	assert.Equal(t, []string{OutcomeOK, OutcomeInvalid, OutcomeError}, m.records)
	assert.Equal(t, 3, m.splits)
}
