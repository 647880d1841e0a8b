// Package redis provides a redis-backed store: the balance lives in a
// per-account hash, the history in a per-account list.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/umar-saleem/points-ledger/internal/interfaces"
	"github.com/umar-saleem/points-ledger/internal/models"
)

// Store implements the balance and history stores on a redis client.
type Store struct {
	client redis.UniversalClient
}

// NewStore wraps an existing redis client.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Open connects to a standalone redis instance and verifies the
// connection.
func Open(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func balanceKey(key int64) string { return fmt.Sprintf("points:balance:%d", key) }
func historyKey(key int64) string { return fmt.Sprintf("points:history:%d", key) }

// Get returns the account for key, a zero-balance account if unseen.
func (s *Store) Get(ctx context.Context, key int64) (models.Account, error) {
	fields, err := s.client.HGetAll(ctx, balanceKey(key)).Result()
	if err != nil {
		return models.Account{}, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return models.Account{AccountID: key}, nil
	}

	balance, err := strconv.ParseInt(fields["balance"], 10, 64)
	if err != nil {
		return models.Account{}, fmt.Errorf("corrupt balance for account %d: %w", key, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return models.Account{}, fmt.Errorf("corrupt timestamp for account %d: %w", key, err)
	}

	return models.Account{AccountID: key, Balance: balance, UpdatedAt: updatedAt}, nil
}

// Set persists the new balance with a fresh timestamp.
func (s *Store) Set(ctx context.Context, key int64, balance int64) (models.Account, error) {
	now := time.Now().UTC()
	err := s.client.HSet(ctx, balanceKey(key),
		"balance", strconv.FormatInt(balance, 10),
		"updated_at", now.Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return models.Account{}, fmt.Errorf("redis hset: %w", err)
	}

	return models.Account{AccountID: key, Balance: balance, UpdatedAt: now}, nil
}

// Append pushes one entry onto the account's history list.
func (s *Store) Append(ctx context.Context, key int64, amount int64, kind models.OperationKind, at time.Time) (models.LedgerEntry, error) {
	entry := models.LedgerEntry{
		ID:        uuid.New().String(),
		AccountID: key,
		Kind:      kind,
		Amount:    amount,
		CreatedAt: at,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("marshal entry: %w", err)
	}
	if err := s.client.RPush(ctx, historyKey(key), data).Err(); err != nil {
		return models.LedgerEntry{}, fmt.Errorf("redis rpush: %w", err)
	}

	return entry, nil
}

// ListByAccount returns key's entries in append order.
func (s *Store) ListByAccount(ctx context.Context, key int64) ([]models.LedgerEntry, error) {
	raw, err := s.client.LRange(ctx, historyKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	entries := make([]models.LedgerEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.LedgerEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("corrupt history entry for account %d: %w", key, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

var (
	_ interfaces.BalanceStore = (*Store)(nil)
	_ interfaces.HistoryStore = (*Store)(nil)
)
