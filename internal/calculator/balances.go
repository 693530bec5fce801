package calculator

import (
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// LedgerRow is a split together with the payer of the expense it belongs to.
// It carries exactly what the balance aggregates filter and sum on.
type LedgerRow struct {
	UserID    string
	PaidBy    string
	Amount    money.Money
	IsSettled bool
}

// SumOwed adds up the unsettled shares userID has to pay.
func SumOwed(rows []LedgerRow, userID string) money.Money {
	var total money.Money
	for _, r := range rows {
		if !r.IsSettled && r.UserID == userID {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// SumDue adds up the unsettled shares others have to pay userID.
// The payer's own share is created settled, so it never counts here.
func SumDue(rows []LedgerRow, userID string) money.Money {
	var total money.Money
	for _, r := range rows {
		if !r.IsSettled && r.PaidBy == userID {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// Tally computes userID's balance over rows.
func Tally(rows []LedgerRow, userID string) models.Balance {
	return models.NewBalance(SumOwed(rows, userID), SumDue(rows, userID))
}
