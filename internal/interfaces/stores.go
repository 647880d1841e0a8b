package interfaces

import (
	"context"
	"time"

	"github.com/umar-saleem/points-ledger/internal/models"
)

// BalanceStore holds the current balance per account.
//
// Get must return a zero-balance account for keys it has never seen.
// Set persists the new balance and returns the stored account with a
// fresh timestamp. Calls for the same key arrive already serialized by
// the transactor's lock, so the store only needs atomic per-key
// read/write, not its own locking protocol.
type BalanceStore interface {
	Get(ctx context.Context, key int64) (models.Account, error)
	Set(ctx context.Context, key int64, balance int64) (models.Account, error)
}

// HistoryStore is the append-only log of applied operations.
// ListByAccount returns entries ascending by append order.
type HistoryStore interface {
	Append(ctx context.Context, key int64, amount int64, kind models.OperationKind, at time.Time) (models.LedgerEntry, error)
	ListByAccount(ctx context.Context, key int64) ([]models.LedgerEntry, error)
}
