package reporting

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/storage/memory"
)

func seededStores(t *testing.T) (*memory.OutcomeStore, *memory.CheckpointStore) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	outcomes := store.Outcomes()
	checkpoints := store.Checkpoints()

	rows := []*domain.EvaluationOutcome{
		{WalletAddress: "wallet-1", TokenAddress: "token-1", TokenSymbol: "ONE",
			Reason: domain.ReasonPass,
			Stats: domain.WalletStats{PnLPct30d: 2.0, WinRate: 0.7,
				RealizedProfitUSD: 50, RealizedProfitRatio: "1.50x"},
			EvaluatedAt: 1700000000000},
		{WalletAddress: "wallet-2", TokenAddress: "token-1", TokenSymbol: "ONE",
			Reason:      domain.ReasonPass,
			Stats:       domain.WalletStats{PnLPct30d: 1.0, WinRate: 0.6},
			EvaluatedAt: 1700000000000},
		{WalletAddress: "wallet-3", TokenAddress: "token-1",
			Reason: domain.ReasonPnL30Low, Stats: domain.WalletStats{PnLPct30d: 0.1}},
		{WalletAddress: "wallet-4", TokenAddress: "token-1",
			Reason: domain.ReasonPnL30Low, Stats: domain.WalletStats{PnLPct30d: 0.2}},
		{WalletAddress: "wallet-5", TokenAddress: "token-1",
			Reason: domain.TagReason("sandwich_bot")},
	}
	for _, o := range rows {
		if err := outcomes.Upsert(ctx, o); err != nil {
			t.Fatalf("seed outcome: %v", err)
		}
	}

	err := checkpoints.Upsert(ctx, &domain.TargetCheckpoint{
		TokenAddress: "token-1", TokenName: "Token One", TokenSymbol: "ONE",
		WalletCount: 5, PassedCount: 2, ProcessedAt: 1700000000000,
	})
	if err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	return outcomes, checkpoints
}

func TestGenerate(t *testing.T) {
	outcomes, checkpoints := seededStores(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator(outcomes, checkpoints).WithClock(func() time.Time { return fixed })

	report, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v, want %v", report.GeneratedAt, fixed)
	}
	if report.Stats.TargetCount != 1 || report.Stats.WalletCount != 5 || report.Stats.PassedCount != 2 {
		t.Errorf("stats = %+v", report.Stats)
	}

	// Breakdown sorted count DESC then reason ASC, PASS excluded
	if len(report.ReasonBreakdown) != 2 {
		t.Fatalf("breakdown = %+v, want 2 rows", report.ReasonBreakdown)
	}
	if report.ReasonBreakdown[0].Reason != domain.ReasonPnL30Low || report.ReasonBreakdown[0].Count != 2 {
		t.Errorf("breakdown[0] = %+v", report.ReasonBreakdown[0])
	}
	if report.ReasonBreakdown[1].Reason != domain.TagReason("sandwich_bot") {
		t.Errorf("breakdown[1] = %+v", report.ReasonBreakdown[1])
	}

	// Passed traders best PnL first
	if len(report.PassedTraders) != 2 || report.PassedTraders[0].WalletAddress != "wallet-1" {
		t.Errorf("passed = %+v", report.PassedTraders)
	}
	if report.PassedPnL30d.Count != 2 || report.PassedPnL30d.Max != 2.0 || report.PassedPnL30d.Min != 1.0 {
		t.Errorf("distribution = %+v", report.PassedPnL30d)
	}
}

func TestGenerateEmptyStores(t *testing.T) {
	store := memory.NewStore()
	g := NewGenerator(store.Outcomes(), store.Checkpoints())

	report, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.Stats.WalletCount != 0 || len(report.PassedTraders) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}

	md := RenderMarkdown(report)
	if !strings.Contains(md, "No rejections recorded.") || !strings.Contains(md, "No passed traders yet.") {
		t.Errorf("markdown missing empty-state text:\n%s", md)
	}
}

func TestWriteFiles(t *testing.T) {
	outcomes, checkpoints := seededStores(t)
	g := NewGenerator(outcomes, checkpoints).
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })

	report, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "docs")
	if err := g.WriteFiles(report, dir); err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}

	md, err := os.ReadFile(filepath.Join(dir, "REPORT.md"))
	if err != nil {
		t.Fatalf("read REPORT.md: %v", err)
	}
	for _, want := range []string{
		"# Trader Screening Report",
		"Generated: 2025-06-01T12:00:00Z",
		"| Targets Processed | 1 |",
		"| Wallets Passed | 2 |",
		"| PNL30_LOW | 2 |",
		"Token One",
	} {
		if !strings.Contains(string(md), want) {
			t.Errorf("REPORT.md missing %q", want)
		}
	}

	csv, err := os.ReadFile(filepath.Join(dir, "passed_traders.csv"))
	if err != nil {
		t.Fatalf("read passed_traders.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header plus 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "wallet_address,token_address,token_symbol") {
		t.Errorf("csv header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "wallet-1,token-1,ONE") {
		t.Errorf("csv first row = %q", lines[1])
	}
}
