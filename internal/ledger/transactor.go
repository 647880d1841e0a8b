// Package ledger implements the balance transaction protocol: each
// credit or debit runs as a read-validate-compute-write-record sequence
// under that account's lock.
package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/umar-saleem/points-ledger/internal/interfaces"
	"github.com/umar-saleem/points-ledger/internal/keylock"
	"github.com/umar-saleem/points-ledger/internal/metrics"
	"github.com/umar-saleem/points-ledger/internal/models"
	"github.com/umar-saleem/points-ledger/internal/models/events"
)

// Domain policy constants. Fixed by the domain, not configurable.
const (
	// MaxBalance is the ceiling any account balance may reach.
	MaxBalance = 10_000_000

	// MaxCreditPerOperation caps the amount of a single credit.
	MaxCreditPerOperation = 1_000_000

	// DebitUnit is the granularity debits must be a multiple of.
	DebitUnit = 100
)

// Transactor applies credits and debits to accounts. Every mutation is
// wrapped by the per-account lock, so concurrent requests for one
// account serialize in FIFO order while other accounts proceed freely.
type Transactor struct {
	locks    *keylock.KeyedLock
	balances interfaces.BalanceStore
	history  interfaces.HistoryStore
	events   interfaces.EventPublisher // optional, nil disables publishing
	log      *zap.Logger
}

// Option configures a Transactor.
type Option func(*Transactor)

// WithEventPublisher makes committed operations publish an
// OperationApplied event. Publishing is best-effort: a publish failure
// is logged but never fails the already-committed operation.
func WithEventPublisher(p interfaces.EventPublisher) Option {
	return func(t *Transactor) { t.events = p }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(t *Transactor) { t.log = log }
}

// NewTransactor creates a Transactor backed by the given stores.
func NewTransactor(balances interfaces.BalanceStore, history interfaces.HistoryStore, opts ...Option) *Transactor {
	t := &Transactor{
		locks:    keylock.New(),
		balances: balances,
		history:  history,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Locks exposes the lock registry, for wiring its size into metrics.
func (t *Transactor) Locks() *keylock.KeyedLock {
	return t.locks
}

// Apply performs one credit or debit for key and returns the updated
// account.
//
// Malformed input is rejected before the lock is acquired, so doomed
// requests never serialize behind valid ones. Inside the lock the
// sequence is: read balance (account springs into existence at 0),
// validate against the domain limits, write the new balance, append a
// ledger entry stamped with the store's confirmed write time. A
// validation failure aborts with no write and no entry.
func (t *Transactor) Apply(ctx context.Context, key int64, kind models.OperationKind, amount int64) (models.Account, error) {
	if err := Validate(key, kind, amount); err != nil {
		metrics.OperationRejected(kind)
		return models.Account{}, err
	}

	start := time.Now()

	var account models.Account
	err := t.locks.WithLock(ctx, key, func(ctx context.Context) error {
		current, err := t.balances.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("get balance: %w", err)
		}

		next := current.Balance
		switch kind {
		case models.OperationCredit:
			next += amount
			if next > MaxBalance {
				return ErrBalanceLimitExceeded
			}
		case models.OperationDebit:
			if current.Balance < amount {
				return ErrInsufficientFunds
			}
			next -= amount
		}

		updated, err := t.balances.Set(ctx, key, next)
		if err != nil {
			return fmt.Errorf("set balance: %w", err)
		}

		entry, err := t.history.Append(ctx, key, amount, kind, updated.UpdatedAt)
		if err != nil {
			return fmt.Errorf("append history: %w", err)
		}

		account = updated
		t.publish(ctx, key, entry, updated)

		return nil
	})
	if err != nil {
		metrics.OperationRejected(kind)
		return models.Account{}, err
	}

	metrics.OperationCommitted(kind, time.Since(start))
	t.log.Debug("operation committed",
		zap.Int64("account_id", key),
		zap.String("kind", string(kind)),
		zap.Int64("amount", amount),
		zap.Int64("balance", account.Balance),
	)

	return account, nil
}

// Balance returns the current account state for key, a zero-balance
// account if the key has never been credited.
func (t *Transactor) Balance(ctx context.Context, key int64) (models.Account, error) {
	if key <= 0 {
		return models.Account{}, ErrInvalidKey
	}

	account, err := t.balances.Get(ctx, key)
	if err != nil {
		return models.Account{}, fmt.Errorf("get balance: %w", err)
	}

	return account, nil
}

// History returns the applied operations for key, ascending by append
// order.
func (t *Transactor) History(ctx context.Context, key int64) ([]models.LedgerEntry, error) {
	if key <= 0 {
		return nil, ErrInvalidKey
	}

	entries, err := t.history.ListByAccount(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	return entries, nil
}

func (t *Transactor) publish(ctx context.Context, key int64, entry models.LedgerEntry, account models.Account) {
	if t.events == nil {
		return
	}

	if err := t.events.Publish(ctx, key, events.NewOperationApplied(entry, account)); err != nil {
		t.log.Warn("publish operation event failed",
			zap.Int64("account_id", key),
			zap.String("entry_id", entry.ID),
			zap.Error(err),
		)
	}
}

// Validate checks key, kind and amount without touching the lock or
// the stores, so the check stays testable independently of locking.
func Validate(key int64, kind models.OperationKind, amount int64) error {
	if key <= 0 {
		return ErrInvalidKey
	}
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidAmount, amount)
	}
	if kind == models.OperationCredit && amount > MaxCreditPerOperation {
		return fmt.Errorf("%w: credit amount %d exceeds per-operation cap %d", ErrInvalidAmount, amount, MaxCreditPerOperation)
	}
	if kind == models.OperationDebit && amount%DebitUnit != 0 {
		return fmt.Errorf("%w: debit amount %d is not a multiple of %d", ErrInvalidAmount, amount, DebitUnit)
	}

	return nil
}
