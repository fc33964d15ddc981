package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/storage"
)

func TestCheckpointStoreUpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	want := &domain.TargetCheckpoint{
		TokenAddress: "token-1",
		TokenName:    "Token One",
		TokenSymbol:  "ONE",
		WalletCount:  40,
		PassedCount:  3,
		ProcessedAt:  1700000000000,
	}
	require.NoError(t, store.Upsert(ctx, want))

	got, err := store.Get(ctx, "token-1")
	require.NoError(t, err)
	require.Equal(t, want, got)

	// Replaying the same target replaces the counts
	want.WalletCount = 45
	want.PassedCount = 4
	require.NoError(t, store.Upsert(ctx, want))

	got, err = store.Get(ctx, "token-1")
	require.NoError(t, err)
	require.Equal(t, int64(45), got.WalletCount)
	require.Equal(t, int64(4), got.PassedCount)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestCheckpointStoreGetNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewCheckpointStore(pool).Get(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCheckpointStoreUpsertRejectsInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	require.ErrorIs(t, store.Upsert(ctx, nil), storage.ErrInvalidInput)
	require.ErrorIs(t, store.Upsert(ctx, &domain.TargetCheckpoint{}), storage.ErrInvalidInput)
}

func TestCheckpointStoreUnresolved(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	require.NoError(t, store.Upsert(ctx, &domain.TargetCheckpoint{TokenAddress: "token-2", ProcessedAt: 100}))

	targets := []domain.EvaluationTarget{
		{Address: "token-1", Name: "One"},
		{Address: "token-2", Name: "Two"},
		{Address: "token-3", Name: "Three"},
	}
	pending, err := store.Unresolved(ctx, targets)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "token-1", pending[0].Address)
	require.Equal(t, "token-3", pending[1].Address)

	// Empty input short-circuits without touching the database
	pending, err = store.Unresolved(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestCheckpointStoreRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	require.NoError(t, store.Upsert(ctx, &domain.TargetCheckpoint{TokenAddress: "token-1", ProcessedAt: 100}))
	require.NoError(t, store.Upsert(ctx, &domain.TargetCheckpoint{TokenAddress: "token-2", ProcessedAt: 300}))
	require.NoError(t, store.Upsert(ctx, &domain.TargetCheckpoint{TokenAddress: "token-3", ProcessedAt: 200}))

	got, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "token-2", got[0].TokenAddress)
	require.Equal(t, "token-3", got[1].TokenAddress)
}
