package models

import "time"

// LedgerEntry represents a single applied operation for an account.
// Entries are appended in lock-acquisition order and never mutated.
type LedgerEntry struct {
	ID        string        `json:"id"`         // unique identifier
	AccountID int64         `json:"account_id"` // which account this entry belongs to
	Kind      OperationKind `json:"kind"`       // CREDIT or DEBIT
	Amount    int64         `json:"amount"`     // in points, always positive
	CreatedAt time.Time     `json:"created_at"` // the store's confirmed write timestamp
}
