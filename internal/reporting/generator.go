// Package reporting produces report artifacts from stored screening
// results.
package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"solana-trader-screener/internal/metrics"
	"solana-trader-screener/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	outcomes    storage.OutcomeStore
	checkpoints storage.CheckpointStore
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(outcomes storage.OutcomeStore, checkpoints storage.CheckpointStore) *Generator {
	return &Generator{
		outcomes:    outcomes,
		checkpoints: checkpoints,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate collects database totals, the rejection breakdown, and the
// passed-trader PnL distribution into a Report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	stats, err := storage.CollectDatabaseStats(ctx, g.outcomes, g.checkpoints)
	if err != nil {
		return nil, fmt.Errorf("collect database stats: %w", err)
	}

	reasonCounts, err := g.outcomes.CountByReason(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by reason: %w", err)
	}
	breakdown := make([]ReasonCountRow, 0, len(reasonCounts))
	for reason, count := range reasonCounts {
		breakdown = append(breakdown, ReasonCountRow{Reason: reason, Count: count})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}
		return breakdown[i].Reason < breakdown[j].Reason
	})

	passed, err := g.outcomes.ListPassed(ctx, PassedListLimit)
	if err != nil {
		return nil, fmt.Errorf("list passed traders: %w", err)
	}

	pnl := make([]float64, 0, len(passed))
	for _, o := range passed {
		pnl = append(pnl, o.Stats.PnLPct30d)
	}

	return &Report{
		GeneratedAt:     g.now(),
		Stats:           *stats,
		ReasonBreakdown: breakdown,
		PassedPnL30d:    metrics.Summarize(pnl),
		PassedTraders:   passed,
	}, nil
}

// WriteFiles renders the report into outputDir as REPORT.md and
// passed_traders.csv.
func (g *Generator) WriteFiles(report *Report, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(outputDir, "REPORT.md")
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(report)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", mdPath, err)
	}

	csvPath := filepath.Join(outputDir, "passed_traders.csv")
	if err := os.WriteFile(csvPath, []byte(RenderPassedCSV(report.PassedTraders)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}

	return nil
}
