package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/storage"
)

// OutcomeStore implements storage.OutcomeStore using PostgreSQL.
type OutcomeStore struct {
	pool *Pool
}

// NewOutcomeStore creates a new OutcomeStore.
func NewOutcomeStore(pool *Pool) *OutcomeStore {
	return &OutcomeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OutcomeStore = (*OutcomeStore)(nil)

const outcomeColumns = `
	wallet_address, token_address, token_name, token_symbol, reason,
	tags, win_rate, pnl_usd_7d, pnl_usd_30d, pnl_pct_7d, pnl_pct_30d,
	tx_count_7d, tx_count_30d, top_holdings,
	total_bought_usd, total_sold_usd, realized_profit_usd, realized_profit_ratio,
	holding_amount, buy_tx_count, sell_tx_count, evaluated_at
`

// Upsert inserts the outcome or replaces the existing row for the same
// (wallet_address, token_address).
func (s *OutcomeStore) Upsert(ctx context.Context, o *domain.EvaluationOutcome) error {
	if o == nil || o.WalletAddress == "" || o.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	holdings, err := json.Marshal(o.Stats.TopHoldings)
	if err != nil {
		return fmt.Errorf("marshal top holdings: %w", err)
	}

	query := `
		INSERT INTO trader_outcomes (` + outcomeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (wallet_address, token_address) DO UPDATE SET
			token_name = EXCLUDED.token_name,
			token_symbol = EXCLUDED.token_symbol,
			reason = EXCLUDED.reason,
			tags = EXCLUDED.tags,
			win_rate = EXCLUDED.win_rate,
			pnl_usd_7d = EXCLUDED.pnl_usd_7d,
			pnl_usd_30d = EXCLUDED.pnl_usd_30d,
			pnl_pct_7d = EXCLUDED.pnl_pct_7d,
			pnl_pct_30d = EXCLUDED.pnl_pct_30d,
			tx_count_7d = EXCLUDED.tx_count_7d,
			tx_count_30d = EXCLUDED.tx_count_30d,
			top_holdings = EXCLUDED.top_holdings,
			total_bought_usd = EXCLUDED.total_bought_usd,
			total_sold_usd = EXCLUDED.total_sold_usd,
			realized_profit_usd = EXCLUDED.realized_profit_usd,
			realized_profit_ratio = EXCLUDED.realized_profit_ratio,
			holding_amount = EXCLUDED.holding_amount,
			buy_tx_count = EXCLUDED.buy_tx_count,
			sell_tx_count = EXCLUDED.sell_tx_count,
			evaluated_at = EXCLUDED.evaluated_at
	`

	tags := o.Stats.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err = s.pool.Exec(ctx, query,
		o.WalletAddress,
		o.TokenAddress,
		o.TokenName,
		o.TokenSymbol,
		string(o.Reason),
		tags,
		o.Stats.WinRate,
		o.Stats.PnLUSD7d,
		o.Stats.PnLUSD30d,
		o.Stats.PnLPct7d,
		o.Stats.PnLPct30d,
		o.Stats.TxCount7d,
		o.Stats.TxCount30d,
		holdings,
		o.Stats.TotalBoughtUSD,
		o.Stats.TotalSoldUSD,
		o.Stats.RealizedProfitUSD,
		o.Stats.RealizedProfitRatio,
		o.Stats.HoldingAmount,
		o.Stats.BuyTxCount,
		o.Stats.SellTxCount,
		o.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert outcome: %w", err)
	}
	return nil
}

// GetByKey retrieves one outcome. Returns ErrNotFound if not exists.
func (s *OutcomeStore) GetByKey(ctx context.Context, walletAddress, tokenAddress string) (*domain.EvaluationOutcome, error) {
	query := `
		SELECT ` + outcomeColumns + `
		FROM trader_outcomes
		WHERE wallet_address = $1 AND token_address = $2
	`

	row := s.pool.QueryRow(ctx, query, walletAddress, tokenAddress)
	o, err := scanOutcome(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get outcome by key: %w", err)
	}
	return o, nil
}

// ListByTarget retrieves all outcomes for a token, ordered by wallet ASC.
func (s *OutcomeStore) ListByTarget(ctx context.Context, tokenAddress string) ([]*domain.EvaluationOutcome, error) {
	query := `
		SELECT ` + outcomeColumns + `
		FROM trader_outcomes
		WHERE token_address = $1
		ORDER BY wallet_address ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("list outcomes by target: %w", err)
	}
	defer rows.Close()

	return scanOutcomes(rows)
}

// ListPassed retrieves PASS outcomes ordered by 30d PnL percent DESC.
func (s *OutcomeStore) ListPassed(ctx context.Context, limit int) ([]*domain.EvaluationOutcome, error) {
	query := `
		SELECT ` + outcomeColumns + `
		FROM trader_outcomes
		WHERE reason = $1
		ORDER BY pnl_pct_30d DESC, wallet_address ASC
	`
	args := []interface{}{string(domain.ReasonPass)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list passed outcomes: %w", err)
	}
	defer rows.Close()

	return scanOutcomes(rows)
}

// CountByReason returns per-reason outcome counts, PASS excluded.
func (s *OutcomeStore) CountByReason(ctx context.Context) (map[domain.ReasonCode]int64, error) {
	query := `
		SELECT reason, COUNT(*)
		FROM trader_outcomes
		WHERE reason <> $1
		GROUP BY reason
	`

	rows, err := s.pool.Query(ctx, query, string(domain.ReasonPass))
	if err != nil {
		return nil, fmt.Errorf("count outcomes by reason: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ReasonCode]int64)
	for rows.Next() {
		var reason string
		var count int64
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("scan reason count: %w", err)
		}
		counts[domain.ReasonCode(reason)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reason counts: %w", err)
	}
	return counts, nil
}

// Count returns the total number of stored outcomes.
func (s *OutcomeStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trader_outcomes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count outcomes: %w", err)
	}
	return count, nil
}

// CountPassed returns the number of PASS outcomes.
func (s *OutcomeStore) CountPassed(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trader_outcomes WHERE reason = $1`, string(domain.ReasonPass)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count passed outcomes: %w", err)
	}
	return count, nil
}

// scanOutcome scans a single row into an EvaluationOutcome.
func scanOutcome(row pgx.Row) (*domain.EvaluationOutcome, error) {
	var o domain.EvaluationOutcome
	var reason string
	var holdings []byte

	err := row.Scan(
		&o.WalletAddress,
		&o.TokenAddress,
		&o.TokenName,
		&o.TokenSymbol,
		&reason,
		&o.Stats.Tags,
		&o.Stats.WinRate,
		&o.Stats.PnLUSD7d,
		&o.Stats.PnLUSD30d,
		&o.Stats.PnLPct7d,
		&o.Stats.PnLPct30d,
		&o.Stats.TxCount7d,
		&o.Stats.TxCount30d,
		&holdings,
		&o.Stats.TotalBoughtUSD,
		&o.Stats.TotalSoldUSD,
		&o.Stats.RealizedProfitUSD,
		&o.Stats.RealizedProfitRatio,
		&o.Stats.HoldingAmount,
		&o.Stats.BuyTxCount,
		&o.Stats.SellTxCount,
		&o.EvaluatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Reason = domain.ReasonCode(reason)
	if len(holdings) > 0 {
		if err := json.Unmarshal(holdings, &o.Stats.TopHoldings); err != nil {
			return nil, fmt.Errorf("unmarshal top holdings: %w", err)
		}
	}
	return &o, nil
}

// scanOutcomes scans multiple rows into a slice of EvaluationOutcome.
func scanOutcomes(rows pgx.Rows) ([]*domain.EvaluationOutcome, error) {
	var outcomes []*domain.EvaluationOutcome

	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outcome row: %w", err)
		}
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome rows: %w", err)
	}

	return outcomes, nil
}
