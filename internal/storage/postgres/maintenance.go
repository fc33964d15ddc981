package postgres

import (
	"context"
	"fmt"

	"solana-trader-screener/internal/storage"
)

// Maintenance implements storage.TargetRemover using PostgreSQL.
type Maintenance struct {
	pool *Pool
}

// NewMaintenance creates a new Maintenance.
func NewMaintenance(pool *Pool) *Maintenance {
	return &Maintenance{pool: pool}
}

// Compile-time interface check.
var _ storage.TargetRemover = (*Maintenance)(nil)

// RemoveTarget purges the checkpoint and all outcomes for the token in one
// transaction. Returns ErrNotFound when the token had neither.
func (m *Maintenance) RemoveTarget(ctx context.Context, tokenAddress string) error {
	if tokenAddress == "" {
		return storage.ErrInvalidInput
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin remove target tx: %w", err)
	}
	defer tx.Rollback(ctx)

	outcomes, err := tx.Exec(ctx, `DELETE FROM trader_outcomes WHERE token_address = $1`, tokenAddress)
	if err != nil {
		return fmt.Errorf("delete outcomes: %w", err)
	}

	checkpoint, err := tx.Exec(ctx, `DELETE FROM processed_targets WHERE token_address = $1`, tokenAddress)
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}

	if outcomes.RowsAffected() == 0 && checkpoint.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit remove target tx: %w", err)
	}
	return nil
}
