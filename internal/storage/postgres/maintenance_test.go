package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/storage"
)

func TestMaintenanceRemoveTarget(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	outcomes := NewOutcomeStore(pool)
	checkpoints := NewCheckpointStore(pool)
	maintenance := NewMaintenance(pool)

	require.NoError(t, outcomes.Upsert(ctx, testOutcome("wallet-1", "token-1", domain.ReasonPass, 1)))
	require.NoError(t, outcomes.Upsert(ctx, testOutcome("wallet-2", "token-1", domain.ReasonError, 0)))
	require.NoError(t, outcomes.Upsert(ctx, testOutcome("wallet-1", "token-2", domain.ReasonPass, 1)))
	require.NoError(t, checkpoints.Upsert(ctx, &domain.TargetCheckpoint{TokenAddress: "token-1", ProcessedAt: 100}))

	require.NoError(t, maintenance.RemoveTarget(ctx, "token-1"))

	_, err := checkpoints.Get(ctx, "token-1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	left, err := outcomes.ListByTarget(ctx, "token-1")
	require.NoError(t, err)
	require.Empty(t, left)

	// Other targets survive the purge
	_, err = outcomes.GetByKey(ctx, "wallet-1", "token-2")
	require.NoError(t, err)
}

func TestMaintenanceRemoveTargetCheckpointOnly(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	checkpoints := NewCheckpointStore(pool)
	maintenance := NewMaintenance(pool)

	require.NoError(t, checkpoints.Upsert(ctx, &domain.TargetCheckpoint{TokenAddress: "token-1", ProcessedAt: 100}))
	require.NoError(t, maintenance.RemoveTarget(ctx, "token-1"))

	_, err := checkpoints.Get(ctx, "token-1")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMaintenanceRemoveTargetNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	maintenance := NewMaintenance(pool)
	require.ErrorIs(t, maintenance.RemoveTarget(context.Background(), "missing"), storage.ErrNotFound)
	require.ErrorIs(t, maintenance.RemoveTarget(context.Background(), ""), storage.ErrInvalidInput)
}
