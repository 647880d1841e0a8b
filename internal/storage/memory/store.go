// Package memory provides the in-memory store implementation, used by
// default and by the test suite.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/umar-saleem/points-ledger/internal/interfaces"
	"github.com/umar-saleem/points-ledger/internal/models"
)

// Store is an in-memory implementation of both the balance store and
// the history store. A single mutex protects the maps; calls for one
// account arrive already serialized by the account lock, the mutex
// only guards concurrent access across different accounts.
type Store struct {
	mu       sync.Mutex
	accounts map[int64]models.Account
	entries  map[int64][]models.LedgerEntry
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]models.Account),
		entries:  make(map[int64][]models.LedgerEntry),
	}
}

// Get returns the account for key, a zero-balance account if unseen.
func (s *Store) Get(ctx context.Context, key int64) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[key]
	if !ok {
		return models.Account{AccountID: key}, nil
	}

	return account, nil
}

// Set persists the new balance and returns the stored account with a
// fresh timestamp.
func (s *Store) Set(ctx context.Context, key int64, balance int64) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := models.Account{
		AccountID: key,
		Balance:   balance,
		UpdatedAt: time.Now().UTC(),
	}
	s.accounts[key] = account

	return account, nil
}

// Append records one applied operation for key.
func (s *Store) Append(ctx context.Context, key int64, amount int64, kind models.OperationKind, at time.Time) (models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := models.LedgerEntry{
		ID:        uuid.New().String(),
		AccountID: key,
		Kind:      kind,
		Amount:    amount,
		CreatedAt: at,
	}
	s.entries[key] = append(s.entries[key], entry)

	return entry, nil
}

// ListByAccount returns a copy of key's entries in append order, so
// external code can't modify internal state.
func (s *Store) ListByAccount(ctx context.Context, key int64) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]models.LedgerEntry, len(s.entries[key]))
	copy(copied, s.entries[key])

	return copied, nil
}

// Compile-time checks: Store implements both store interfaces.
var (
	_ interfaces.BalanceStore = (*Store)(nil)
	_ interfaces.HistoryStore = (*Store)(nil)
)
