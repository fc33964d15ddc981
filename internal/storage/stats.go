package storage

import (
	"context"
	"fmt"

	"solana-trader-screener/internal/domain"
)

// RecentTargetsLimit is how many checkpoints DatabaseStats reports.
const RecentTargetsLimit = 5

// CollectDatabaseStats assembles the summary the status surfaces expose.
func CollectDatabaseStats(ctx context.Context, outcomes OutcomeStore, checkpoints CheckpointStore) (*domain.DatabaseStats, error) {
	targetCount, err := checkpoints.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count checkpoints: %w", err)
	}

	walletCount, err := outcomes.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}

	passedCount, err := outcomes.CountPassed(ctx)
	if err != nil {
		return nil, fmt.Errorf("count passed outcomes: %w", err)
	}

	recent, err := checkpoints.Recent(ctx, RecentTargetsLimit)
	if err != nil {
		return nil, fmt.Errorf("recent checkpoints: %w", err)
	}

	return &domain.DatabaseStats{
		TargetCount:   targetCount,
		WalletCount:   walletCount,
		PassedCount:   passedCount,
		RecentTargets: recent,
	}, nil
}
