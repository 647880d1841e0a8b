package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/umar-saleem/points-ledger/internal/models"
)

// OperationApplied is published after a credit or debit commits.
// Amounts are rendered as decimals for downstream consumers; the
// ledger core itself computes in integers only.
type OperationApplied struct {
	EntryID    string               `json:"entry_id"`
	AccountID  int64                `json:"account_id"`
	Kind       models.OperationKind `json:"kind"`
	Amount     decimal.Decimal      `json:"amount"`
	Balance    decimal.Decimal      `json:"balance"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// NewOperationApplied builds the event payload from a committed entry
// and the account state it produced.
func NewOperationApplied(entry models.LedgerEntry, account models.Account) OperationApplied {
	return OperationApplied{
		EntryID:    entry.ID,
		AccountID:  entry.AccountID,
		Kind:       entry.Kind,
		Amount:     decimal.NewFromInt(entry.Amount),
		Balance:    decimal.NewFromInt(account.Balance),
		OccurredAt: entry.CreatedAt,
	}
}
