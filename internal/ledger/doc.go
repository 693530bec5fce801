// Package ledger records shared expenses and answers balance queries.
//
// ExpenseService validates an expense, persists it and its cent-exact splits
// in one store transaction. BalanceAggregator sums a user's unsettled splits
// into what they owe and what they are owed.
//
// Neither service holds mutable state between calls; every call is a
// self-contained unit of work against the injected storage.LedgerStore.
// Errors are reported through the sentinels in errors.go and never retried
// here.
package ledger
