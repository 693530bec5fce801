package calculator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

func amounts(splits []models.SplitDraft) []int64 {
	out := make([]int64, len(splits))
	for i, s := range splits {
		out[i] = s.Amount.Minor()
	}
	return out
}

func TestComputeSplits(t *testing.T) {
	tests := []struct {
		name         string
		total        int64
		payer        string
		participants []string
		wantErr      bool
		validateFunc func(t *testing.T, splits []models.SplitDraft)
	}{
		{
			name:         "hundred dollars three ways gives payer the extra cent",
			total:        10000,
			payer:        "alice",
			participants: []string{"bob", "carol"},
			validateFunc: func(t *testing.T, splits []models.SplitDraft) {
				assert.Equal(t, []int64{3334, 3333, 3333}, amounts(splits))
				assert.Equal(t, "alice", splits[0].UserID)
				assert.Equal(t, "bob", splits[1].UserID)
				assert.Equal(t, "carol", splits[2].UserID)
			},
		},
		{
			name:         "ninety dollars four ways has no adjustment",
			total:        9000,
			payer:        "alice",
			participants: []string{"bob", "carol", "dave"},
			validateFunc: func(t *testing.T, splits []models.SplitDraft) {
				assert.Equal(t, []int64{2250, 2250, 2250, 2250}, amounts(splits))
			},
		},
		{
			name:         "three leftover cents go to payer then first two sharers",
			total:        10003,
			payer:        "alice",
			participants: []string{"bob", "carol", "dave"},
			validateFunc: func(t *testing.T, splits []models.SplitDraft) {
				assert.Equal(t, []int64{2501, 2501, 2501, 2500}, amounts(splits))
				assert.Equal(t, "dave", splits[3].UserID)
			},
		},
		{
			name:         "supplied order decides who gets leftover cents",
			total:        10003,
			payer:        "alice",
			participants: []string{"dave", "carol", "bob"},
			validateFunc: func(t *testing.T, splits []models.SplitDraft) {
				assert.Equal(t, "bob", splits[3].UserID)
				assert.Equal(t, int64(2500), splits[3].Amount.Minor())
			},
		},
		{
			name:         "fewer cents than people",
			total:        2,
			payer:        "alice",
			participants: []string{"bob", "carol"},
			validateFunc: func(t *testing.T, splits []models.SplitDraft) {
				assert.Equal(t, []int64{1, 1, 0}, amounts(splits))
			},
		},
		{
			name:         "zero total should error",
			total:        0,
			payer:        "alice",
			participants: []string{"bob"},
			wantErr:      true,
		},
		{
			name:         "negative total should error",
			total:        -100,
			payer:        "alice",
			participants: []string{"bob"},
			wantErr:      true,
		},
		{
			name:         "no participants should error",
			total:        100,
			payer:        "alice",
			participants: []string{},
			wantErr:      true,
		},
		{
			name:         "payer among participants should error",
			total:        100,
			payer:        "alice",
			participants: []string{"bob", "alice"},
			wantErr:      true,
		},
		{
			name:         "duplicate participant should error",
			total:        100,
			payer:        "alice",
			participants: []string{"bob", "bob"},
			wantErr:      true,
		},
		{
			name:         "empty participant id should error",
			total:        100,
			payer:        "alice",
			participants: []string{""},
			wantErr:      true,
		},
		{
			name:         "missing payer should error",
			total:        100,
			payer:        "",
			participants: []string{"bob"},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := ComputeSplits("exp-1", money.FromMinor(tt.total), tt.payer, tt.participants)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParticipantSet)
				assert.Nil(t, splits)
				return
			}
			require.NoError(t, err)
			for _, s := range splits {
				assert.Equal(t, "exp-1", s.ExpenseID)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}

func TestComputeSplitsInvariants(t *testing.T) {
	totals := []int64{1, 2, 7, 99, 100, 101, 9000, 10000, 10003, 123457, 99999999}

	for n := 1; n <= 50; n++ {
		participants := make([]string, n-1)
		for i := range participants {
			participants[i] = fmt.Sprintf("user-%d", i)
		}
		if n == 1 {
			// A payer alone is not a valid expense; the smallest set is payer + one.
			_, err := ComputeSplits("e", money.FromMinor(100), "payer", participants)
			require.ErrorIs(t, err, ErrInvalidParticipantSet)
			continue
		}

		for _, total := range totals {
			splits, err := ComputeSplits("e", money.FromMinor(total), "payer", participants)
			require.NoError(t, err, "n=%d total=%d", n, total)

			require.Len(t, splits, n, "one split per participant")

			var sum money.Money
			settled := 0
			for i, s := range splits {
				sum = sum.Add(s.Amount)
				if s.IsSettled {
					settled++
					assert.Equal(t, 0, i, "only the payer's split is settled")
					assert.Equal(t, "payer", s.UserID)
				}
				assert.False(t, s.Amount.IsNegative())
			}
			assert.Equal(t, total, sum.Minor(), "n=%d total=%d", n, total)
			assert.Equal(t, 1, settled)

			// Shares never differ by more than one cent.
			lo, hi := splits[0].Amount.Minor(), splits[0].Amount.Minor()
			for _, s := range splits {
				lo = min(lo, s.Amount.Minor())
				hi = max(hi, s.Amount.Minor())
			}
			assert.LessOrEqual(t, hi-lo, int64(1))
		}
	}
}
