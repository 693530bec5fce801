// Package calculator holds the pure split and balance arithmetic of the ledger.
package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// ErrInvalidParticipantSet is returned when the participants of an expense
// cannot be split between.
var ErrInvalidParticipantSet = errors.New("invalid participant set")

// ComputeSplits partitions total between the payer and the participants.
//
// Every one of the n = len(participantIDs)+1 people gets total/n minor units.
// The total%n leftover units are handed out one at a time, payer first, then
// participants in the order given, so the shares always add up to total.
//
// The payer's share comes first in the result and is marked settled; every
// other share is unsettled.
func ComputeSplits(expenseID string, total money.Money, payerID string, participantIDs []string) ([]models.SplitDraft, error) {
	if err := validateParticipants(total, payerID, participantIDs); err != nil {
		return nil, err
	}

	n := len(participantIDs) + 1
	base, remainder, err := total.Split(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParticipantSet, err)
	}

	splits := make([]models.SplitDraft, 0, n)
	for i := 0; i < n; i++ {
		userID := payerID
		if i > 0 {
			userID = participantIDs[i-1]
		}

		share := base
		if int64(i) < remainder {
			share = share.Add(money.FromMinor(1))
		}

		splits = append(splits, models.SplitDraft{
			ExpenseID: expenseID,
			UserID:    userID,
			Amount:    share,
			IsSettled: i == 0,
		})
	}

	return splits, nil
}

func validateParticipants(total money.Money, payerID string, participantIDs []string) error {
	if !total.IsPositive() {
		return fmt.Errorf("%w: total must be positive, got %s", ErrInvalidParticipantSet, total)
	}
	if payerID == "" {
		return fmt.Errorf("%w: payer is required", ErrInvalidParticipantSet)
	}
	if len(participantIDs) == 0 {
		return fmt.Errorf("%w: at least one participant besides the payer is required", ErrInvalidParticipantSet)
	}

	seen := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		switch {
		case id == "":
			return fmt.Errorf("%w: empty participant id", ErrInvalidParticipantSet)
		case id == payerID:
			return fmt.Errorf("%w: payer %q listed as participant", ErrInvalidParticipantSet, id)
		case seen[id]:
			return fmt.Errorf("%w: duplicate participant %q", ErrInvalidParticipantSet, id)
		}
		seen[id] = true
	}
	return nil
}
