package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/storage"
)

// CheckpointStore implements storage.CheckpointStore using PostgreSQL.
type CheckpointStore struct {
	pool *Pool
}

// NewCheckpointStore creates a new CheckpointStore.
func NewCheckpointStore(pool *Pool) *CheckpointStore {
	return &CheckpointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CheckpointStore = (*CheckpointStore)(nil)

const checkpointColumns = `
	token_address, token_name, token_symbol, wallet_count, passed_count, processed_at
`

// Upsert inserts the checkpoint or replaces the existing row for the token.
func (s *CheckpointStore) Upsert(ctx context.Context, cp *domain.TargetCheckpoint) error {
	if cp == nil || cp.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO processed_targets (` + checkpointColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token_address) DO UPDATE SET
			token_name = EXCLUDED.token_name,
			token_symbol = EXCLUDED.token_symbol,
			wallet_count = EXCLUDED.wallet_count,
			passed_count = EXCLUDED.passed_count,
			processed_at = EXCLUDED.processed_at
	`

	_, err := s.pool.Exec(ctx, query,
		cp.TokenAddress,
		cp.TokenName,
		cp.TokenSymbol,
		cp.WalletCount,
		cp.PassedCount,
		cp.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert checkpoint: %w", err)
	}
	return nil
}

// Get retrieves a checkpoint. Returns ErrNotFound if not exists.
func (s *CheckpointStore) Get(ctx context.Context, tokenAddress string) (*domain.TargetCheckpoint, error) {
	query := `
		SELECT ` + checkpointColumns + `
		FROM processed_targets
		WHERE token_address = $1
	`

	row := s.pool.QueryRow(ctx, query, tokenAddress)
	cp, err := scanCheckpoint(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}
	return cp, nil
}

// Unresolved filters out already-checkpointed targets, preserving order.
func (s *CheckpointStore) Unresolved(ctx context.Context, targets []domain.EvaluationTarget) ([]domain.EvaluationTarget, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	addresses := make([]string, len(targets))
	for i, t := range targets {
		addresses[i] = t.Address
	}

	query := `SELECT token_address FROM processed_targets WHERE token_address = ANY($1)`
	rows, err := s.pool.Query(ctx, query, addresses)
	if err != nil {
		return nil, fmt.Errorf("query checkpointed targets: %w", err)
	}
	defer rows.Close()

	done := make(map[string]struct{})
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan checkpointed target: %w", err)
		}
		done[addr] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpointed targets: %w", err)
	}

	pending := make([]domain.EvaluationTarget, 0, len(targets))
	for _, t := range targets {
		if _, exists := done[t.Address]; !exists {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

// Recent retrieves checkpoints newest first by processed_at.
func (s *CheckpointStore) Recent(ctx context.Context, limit int) ([]*domain.TargetCheckpoint, error) {
	query := `
		SELECT ` + checkpointColumns + `
		FROM processed_targets
		ORDER BY processed_at DESC, token_address ASC
	`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recent checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []*domain.TargetCheckpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkpoint row: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoint rows: %w", err)
	}
	return checkpoints, nil
}

// Count returns the number of stored checkpoints.
func (s *CheckpointStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM processed_targets`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count checkpoints: %w", err)
	}
	return count, nil
}

// scanCheckpoint scans a single row into a TargetCheckpoint.
func scanCheckpoint(row pgx.Row) (*domain.TargetCheckpoint, error) {
	var cp domain.TargetCheckpoint
	err := row.Scan(
		&cp.TokenAddress,
		&cp.TokenName,
		&cp.TokenSymbol,
		&cp.WalletCount,
		&cp.PassedCount,
		&cp.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}
