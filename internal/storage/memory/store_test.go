package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umar-saleem/points-ledger/internal/models"
)

func TestGetUnseenKeyReturnsZeroAccount(t *testing.T) {
	store := NewStore()

	account, err := store.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.AccountID)
	assert.Equal(t, int64(0), account.Balance)
	assert.True(t, account.UpdatedAt.IsZero())
}

func TestSetStampsFreshTimestamp(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	before := time.Now().UTC()
	account, err := store.Set(ctx, 7, 1_500)
	require.NoError(t, err)

	assert.Equal(t, int64(1_500), account.Balance)
	assert.False(t, account.UpdatedAt.Before(before))

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, account, got)
}

func TestAppendAndListPreserveOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	amounts := []int64{100, 200, 300}
	for _, amount := range amounts {
		entry, err := store.Append(ctx, 7, amount, models.OperationCredit, now)
		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)
	}

	entries, err := store.ListByAccount(ctx, 7)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, amount := range amounts {
		assert.Equal(t, amount, entries[i].Amount)
	}

	// Lists are copies; mutating one must not affect the store.
	entries[0].Amount = 9_999
	again, err := store.ListByAccount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(100), again[0].Amount)
}

func TestAccountsAreIndependent(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.Set(ctx, 1, 100)
	require.NoError(t, err)
	_, err = store.Append(ctx, 1, 100, models.OperationCredit, time.Now())
	require.NoError(t, err)

	other, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), other.Balance)

	entries, err := store.ListByAccount(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
