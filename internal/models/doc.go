// Package models defines the domain records of the ledger.
//
// Records that the store assigns an identity to come in two shapes:
//   - a draft (ExpenseDraft, SplitDraft) that has no ID and is what callers build,
//   - a persisted record (Expense, Split) that always carries its ID.
//
// Keeping the shapes apart means code holding an Expense never has to check
// whether the ID has been assigned yet.
//
// Participants are referenced by user ID strings; relationships use IDs
// rather than pointers.
package models
