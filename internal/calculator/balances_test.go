package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/splitledger/internal/money"
)

func TestTally(t *testing.T) {
	rows := []LedgerRow{
		// alice paid 30.00 split with bob and carol
		{UserID: "alice", PaidBy: "alice", Amount: money.FromMinor(1000), IsSettled: true},
		{UserID: "bob", PaidBy: "alice", Amount: money.FromMinor(1000)},
		{UserID: "carol", PaidBy: "alice", Amount: money.FromMinor(1000), IsSettled: true},
		// bob paid 9.00 split with alice and carol
		{UserID: "bob", PaidBy: "bob", Amount: money.FromMinor(300), IsSettled: true},
		{UserID: "alice", PaidBy: "bob", Amount: money.FromMinor(300)},
		{UserID: "carol", PaidBy: "bob", Amount: money.FromMinor(300)},
	}

	tests := []struct {
		user    string
		owed    int64
		due     int64
		wantNet int64
	}{
		{"alice", 300, 1000, 700},
		{"bob", 1000, 600, -400},
		{"carol", 300, 0, -300},
		{"nobody", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			b := Tally(rows, tt.user)
			assert.Equal(t, tt.owed, b.Owed.Minor())
			assert.Equal(t, tt.due, b.Due.Minor())
			assert.Equal(t, tt.wantNet, b.Net.Minor())
		})
	}
}
