package orchestrator

import (
	"context"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/storage"
)

// DatabaseStats summarizes what the stores currently hold.
func (o *Orchestrator) DatabaseStats(ctx context.Context) (*domain.DatabaseStats, error) {
	return storage.CollectDatabaseStats(ctx, o.outcomes, o.checkpoints)
}
