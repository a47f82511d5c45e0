// Package ledger holds the domain models shared by the ledger core, the bank
// service and the HTTP layer. Models are pure data; balance arithmetic lives
// in internal/app/ledger.
package ledger

import "math/big"

// AccountID names a balance slot in the ledger. The pair is the identity:
// two accounts are equal only when both components match.
type AccountID struct {
	Phone string `json:"phone"`
	Label string `json:"label"`
}

// Snapshot is a folded summary of the ledger state at a given height. The
// master root is a pure function of (height, balances); the timestamp is
// informational only and never feeds the digest.
type Snapshot struct {
	Height      uint64 `json:"height"`
	MasterRoot  string `json:"master_root"`
	TimestampMS int64  `json:"timestamp_ms"`
}

// BalanceView pairs an account with its current balance for API responses.
type BalanceView struct {
	Account AccountID `json:"account"`
	Balance *big.Int  `json:"balance"`
}

// JournalEntry records a completed ledger mutation. Entries are append-only
// observability artifacts, not a recovery mechanism.
type JournalEntry struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"` // "transfer" | "tick" | "seed"
	From   AccountID `json:"from,omitempty"`
	To     AccountID `json:"to,omitempty"`
	Amount *big.Int  `json:"amount,omitempty"`
	Height uint64    `json:"height"`
	TimeMS int64     `json:"time_ms"`
}
