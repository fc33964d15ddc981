package reporting

import (
	"time"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/metrics"
)

// PassedListLimit caps how many passed traders a report lists.
const PassedListLimit = 100

// Report summarizes everything the screener has stored so far.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Database totals and the most recent checkpoints
	Stats domain.DatabaseStats

	// Rejection reasons, PASS excluded, sorted by count DESC
	ReasonBreakdown []ReasonCountRow

	// Distribution of 30d PnL percent across passed traders
	PassedPnL30d metrics.Distribution

	// Passed traders, best 30d PnL first, at most PassedListLimit
	PassedTraders []*domain.EvaluationOutcome
}

// ReasonCountRow is one rejection reason with its outcome count.
type ReasonCountRow struct {
	Reason domain.ReasonCode
	Count  int64
}
