package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver

	"github.com/umar-saleem/points-ledger/internal/interfaces"
	"github.com/umar-saleem/points-ledger/internal/models"
)

// schema creates the tables the store needs. Entry ordering uses a
// bigserial sequence, not timestamps: two entries written within the
// same clock tick must still list in append order.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	account_id BIGINT PRIMARY KEY,
	balance    BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	seq        BIGSERIAL PRIMARY KEY,
	id         UUID NOT NULL,
	account_id BIGINT NOT NULL,
	kind       TEXT NOT NULL,
	amount     BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_account ON ledger_entries (account_id, seq);
`

// Store is the postgres-backed implementation of the balance and
// history stores.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the account for key, a zero-balance account if unseen.
func (s *Store) Get(ctx context.Context, key int64) (models.Account, error) {
	const query = `SELECT account_id, balance, updated_at FROM accounts WHERE account_id = $1`

	var account models.Account
	err := s.db.QueryRowContext(ctx, query, key).Scan(&account.AccountID, &account.Balance, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Account{AccountID: key}, nil
	}
	if err != nil {
		return models.Account{}, err
	}

	return account, nil
}

// Set upserts the balance for key and returns the persisted row with
// the database's write timestamp.
func (s *Store) Set(ctx context.Context, key int64, balance int64) (models.Account, error) {
	const query = `INSERT INTO accounts (account_id, balance, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (account_id) DO UPDATE SET balance = EXCLUDED.balance, updated_at = now()
	RETURNING account_id, balance, updated_at`

	var account models.Account
	err := s.db.QueryRowContext(ctx, query, key, balance).Scan(&account.AccountID, &account.Balance, &account.UpdatedAt)
	if err != nil {
		return models.Account{}, err
	}

	return account, nil
}

// Append inserts one ledger entry for key.
func (s *Store) Append(ctx context.Context, key int64, amount int64, kind models.OperationKind, at time.Time) (models.LedgerEntry, error) {
	const query = `INSERT INTO ledger_entries (id, account_id, kind, amount, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, account_id, kind, amount, created_at`

	var entry models.LedgerEntry
	err := s.db.QueryRowContext(ctx, query, uuid.New().String(), key, string(kind), amount, at).
		Scan(&entry.ID, &entry.AccountID, &entry.Kind, &entry.Amount, &entry.CreatedAt)
	if err != nil {
		return models.LedgerEntry{}, err
	}

	return entry, nil
}

// ListByAccount returns key's entries ascending by append order.
func (s *Store) ListByAccount(ctx context.Context, key int64) ([]models.LedgerEntry, error) {
	const query = `SELECT id, account_id, kind, amount, created_at FROM ledger_entries
	WHERE account_id = $1 ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Kind, &entry.Amount, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

var (
	_ interfaces.BalanceStore = (*Store)(nil)
	_ interfaces.HistoryStore = (*Store)(nil)
)
