package storage

import (
	"context"

	"solana-trader-screener/internal/domain"
)

// OutcomeStore provides access to trader_outcomes storage.
// Outcomes are keyed by (wallet_address, token_address); re-screening a
// pair replaces the prior row, so writes are upserts rather than inserts.
type OutcomeStore interface {
	// Upsert inserts the outcome or replaces the existing row for the
	// same (wallet_address, token_address).
	Upsert(ctx context.Context, o *domain.EvaluationOutcome) error

	// GetByKey retrieves one outcome. Returns ErrNotFound if not exists.
	GetByKey(ctx context.Context, walletAddress, tokenAddress string) (*domain.EvaluationOutcome, error)

	// ListByTarget retrieves all outcomes for a token, ordered by
	// wallet_address ASC.
	ListByTarget(ctx context.Context, tokenAddress string) ([]*domain.EvaluationOutcome, error)

	// ListPassed retrieves PASS outcomes ordered by 30d PnL percent DESC.
	// limit <= 0 means no limit.
	ListPassed(ctx context.Context, limit int) ([]*domain.EvaluationOutcome, error)

	// CountByReason returns per-reason outcome counts, PASS excluded.
	CountByReason(ctx context.Context) (map[domain.ReasonCode]int64, error)

	// Count returns the total number of stored outcomes.
	Count(ctx context.Context) (int64, error)

	// CountPassed returns the number of PASS outcomes.
	CountPassed(ctx context.Context) (int64, error)
}

// CheckpointStore provides access to processed_targets storage.
// A checkpoint marks a target as done and gates re-processing.
type CheckpointStore interface {
	// Upsert inserts the checkpoint or replaces the existing row for the
	// same token_address.
	Upsert(ctx context.Context, cp *domain.TargetCheckpoint) error

	// Get retrieves a checkpoint. Returns ErrNotFound if not exists.
	Get(ctx context.Context, tokenAddress string) (*domain.TargetCheckpoint, error)

	// Unresolved filters out already-checkpointed targets, preserving the
	// input order.
	Unresolved(ctx context.Context, targets []domain.EvaluationTarget) ([]domain.EvaluationTarget, error)

	// Recent retrieves the most recently processed checkpoints, newest
	// first. limit <= 0 means no limit.
	Recent(ctx context.Context, limit int) ([]*domain.TargetCheckpoint, error)

	// Count returns the number of stored checkpoints.
	Count(ctx context.Context) (int64, error)
}

// TargetRemover deletes a target's screening results.
type TargetRemover interface {
	// RemoveTarget atomically purges the target's checkpoint and all of
	// its outcomes. Returns ErrNotFound when nothing was stored for the
	// token.
	RemoveTarget(ctx context.Context, tokenAddress string) error
}

// EvaluationLogStore provides access to the append-only run history.
// Unlike outcomes, log entries are never replaced: every run appends its
// own rows under a fresh run ID.
type EvaluationLogStore interface {
	// Append adds log entries. Entries without a run ID are rejected with
	// ErrInvalidInput.
	Append(ctx context.Context, entries []*domain.EvaluationLogEntry) error

	// ListByRun retrieves all entries of a run, ordered by token_address
	// ASC, wallet_address ASC.
	ListByRun(ctx context.Context, runID string) ([]*domain.EvaluationLogEntry, error)
}
