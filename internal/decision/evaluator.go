// Package decision classifies wallets with a single reason code by applying
// ordered filter rules to their fetched statistics.
package decision

import (
	"context"
	"fmt"
	"slices"
	"time"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/gmgn"
	"solana-trader-screener/internal/observability"
)

// StatsAPI is the slice of the stats client the evaluator needs.
// *gmgn.Client satisfies it.
type StatsAPI interface {
	FetchWalletSummary(ctx context.Context, wallet, period string) (*gmgn.WalletSummary, error)
	FetchTopHoldings(ctx context.Context, wallet string, limit int) ([]gmgn.HoldingEntry, error)
}

// Evaluator applies the filter rules to one wallet at a time.
type Evaluator struct {
	api StatsAPI
	cfg Config
}

// NewEvaluator creates an evaluator. Zero structural config fields fall
// back to defaults.
func NewEvaluator(api StatsAPI, cfg Config) *Evaluator {
	return &Evaluator{api: api, cfg: cfg.withDefaults()}
}

// Evaluate fetches the wallet's summary and top holdings and classifies it.
// Filters apply in fixed order, first match wins:
//
//  1. a disallowed tag          -> TAG_<tag>
//  2. 30d PnL pct <= threshold  -> PNL30_LOW
//  3. no holding reaches ROI    -> ROI_LOW
//  4. otherwise                 -> PASS
//
// A wallet with no summary data is classified JSON_FAIL with empty stats
// and the holdings fetch is skipped. Fetch errors (exhausted throttle
// budget, cancelled context) propagate as errors, never as reason codes.
func (e *Evaluator) Evaluate(ctx context.Context, wallet string) (domain.ReasonCode, *domain.WalletStats, error) {
	start := time.Now()
	defer func() {
		observability.RecordEvaluationDuration(time.Since(start).Seconds())
	}()

	summary, err := e.api.FetchWalletSummary(ctx, wallet, e.cfg.Period)
	if err != nil {
		return "", nil, fmt.Errorf("wallet %s summary: %w", wallet, err)
	}
	if summary == nil {
		return domain.ReasonJSONFail, &domain.WalletStats{}, nil
	}

	entries, err := e.api.FetchTopHoldings(ctx, wallet, e.cfg.TopHoldings)
	if err != nil {
		return "", nil, fmt.Errorf("wallet %s holdings: %w", wallet, err)
	}

	stats := buildStats(summary, entries)
	return e.classify(stats), stats, nil
}

// buildStats is the single pure mapping from upstream responses to the
// stored record. Absent upstream fields stay at their zero values.
func buildStats(summary *gmgn.WalletSummary, entries []gmgn.HoldingEntry) *domain.WalletStats {
	stats := &domain.WalletStats{
		Tags:       summary.Tags,
		WinRate:    summary.WinRate,
		PnLUSD7d:   summary.RealizedProfit7d,
		PnLUSD30d:  summary.RealizedProfit30d,
		PnLPct7d:   summary.PnL7d,
		PnLPct30d:  summary.PnL30d,
		TxCount7d:  summary.Buy7d + summary.Sell7d,
		TxCount30d: summary.Buy30d + summary.Sell30d,
	}
	for _, entry := range entries {
		stats.TopHoldings = append(stats.TopHoldings, domain.Holding{
			Symbol: entry.Token.Symbol,
			ROI:    entry.TotalProfitPnL,
		})
	}
	return stats
}

// classify applies the ordered filters.
func (e *Evaluator) classify(stats *domain.WalletStats) domain.ReasonCode {
	for _, tag := range e.cfg.DisallowedTags {
		if slices.Contains(stats.Tags, tag) {
			return domain.TagReason(tag)
		}
	}

	if stats.PnLPct30d <= e.cfg.MinPnL30Pct {
		return domain.ReasonPnL30Low
	}

	// Vacuously true for empty holdings: a wallet with no inspectable
	// holdings cannot demonstrate the required ROI.
	qualified := false
	for _, h := range stats.TopHoldings {
		if h.ROI >= e.cfg.MinHoldingROI {
			qualified = true
			break
		}
	}
	if !qualified {
		return domain.ReasonROILow
	}

	return domain.ReasonPass
}
