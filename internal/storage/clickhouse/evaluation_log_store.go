package clickhouse

import (
	"context"
	"fmt"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/storage"
)

// EvaluationLogStore implements storage.EvaluationLogStore using ClickHouse.
// The evaluation_log table is a plain MergeTree: history is append-only and
// every run writes under its own run_id, so duplicates cannot arise.
type EvaluationLogStore struct {
	conn *Conn
}

// NewEvaluationLogStore creates a new EvaluationLogStore.
func NewEvaluationLogStore(conn *Conn) *EvaluationLogStore {
	return &EvaluationLogStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EvaluationLogStore = (*EvaluationLogStore)(nil)

// Append adds log entries. Entries without a run ID are rejected.
func (s *EvaluationLogStore) Append(ctx context.Context, entries []*domain.EvaluationLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if e == nil || e.RunID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO evaluation_log (
			run_id, wallet_address, token_address, token_symbol,
			reason, pnl_pct_30d, win_rate, evaluated_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range entries {
		err = batch.Append(
			e.RunID, e.WalletAddress, e.TokenAddress, e.TokenSymbol,
			string(e.Reason), e.PnLPct30d, e.WinRate, e.EvaluatedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// ListByRun retrieves all entries of a run, ordered by token then wallet.
func (s *EvaluationLogStore) ListByRun(ctx context.Context, runID string) ([]*domain.EvaluationLogEntry, error) {
	query := `
		SELECT run_id, wallet_address, token_address, token_symbol,
		       reason, pnl_pct_30d, win_rate, evaluated_at
		FROM evaluation_log
		WHERE run_id = ?
		ORDER BY token_address ASC, wallet_address ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list log entries by run: %w", err)
	}
	defer rows.Close()

	var entries []*domain.EvaluationLogEntry
	for rows.Next() {
		var e domain.EvaluationLogEntry
		var reason string
		err := rows.Scan(
			&e.RunID,
			&e.WalletAddress,
			&e.TokenAddress,
			&e.TokenSymbol,
			&reason,
			&e.PnLPct30d,
			&e.WinRate,
			&e.EvaluatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan log entry row: %w", err)
		}
		e.Reason = domain.ReasonCode(reason)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entry rows: %w", err)
	}
	return entries, nil
}
