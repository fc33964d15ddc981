package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Trader Screening Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Totals
	sb.WriteString("## Totals\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Targets Processed | %d |\n", r.Stats.TargetCount))
	sb.WriteString(fmt.Sprintf("| Wallets Evaluated | %d |\n", r.Stats.WalletCount))
	sb.WriteString(fmt.Sprintf("| Wallets Passed | %d |\n", r.Stats.PassedCount))
	sb.WriteString("\n")

	// Recent targets
	if len(r.Stats.RecentTargets) > 0 {
		sb.WriteString("## Recent Targets\n\n")
		sb.WriteString("| Token | Symbol | Wallets | Passed | Processed |\n")
		sb.WriteString("|-------|--------|---------|--------|-----------|\n")
		for _, cp := range r.Stats.RecentTargets {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %s |\n",
				cp.TokenName, cp.TokenSymbol, cp.WalletCount, cp.PassedCount,
				time.UnixMilli(cp.ProcessedAt).UTC().Format(time.RFC3339)))
		}
		sb.WriteString("\n")
	}

	// Rejection breakdown
	sb.WriteString("## Rejection Reasons\n\n")
	if len(r.ReasonBreakdown) == 0 {
		sb.WriteString("No rejections recorded.\n\n")
	} else {
		sb.WriteString("| Reason | Count |\n")
		sb.WriteString("|--------|-------|\n")
		for _, row := range r.ReasonBreakdown {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", row.Reason, row.Count))
		}
		sb.WriteString("\n")
	}

	// Passed PnL distribution
	sb.WriteString("## Passed Traders: 30d PnL Distribution\n\n")
	if r.PassedPnL30d.Count == 0 {
		sb.WriteString("No passed traders yet.\n\n")
	} else {
		d := r.PassedPnL30d
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Count | %d |\n", d.Count))
		sb.WriteString(fmt.Sprintf("| Mean | %.4f |\n", d.Mean))
		sb.WriteString(fmt.Sprintf("| Median | %.4f |\n", d.Median))
		sb.WriteString(fmt.Sprintf("| P10 | %.4f |\n", d.P10))
		sb.WriteString(fmt.Sprintf("| P90 | %.4f |\n", d.P90))
		sb.WriteString(fmt.Sprintf("| Min | %.4f |\n", d.Min))
		sb.WriteString(fmt.Sprintf("| Max | %.4f |\n", d.Max))
		sb.WriteString(fmt.Sprintf("| Stddev | %.4f |\n", d.Stddev))
		sb.WriteString("\n")
	}

	// Top passed traders
	if len(r.PassedTraders) > 0 {
		sb.WriteString("## Top Passed Traders\n\n")
		sb.WriteString("| Wallet | Token | PnL 30d | Win Rate | Realized | Ratio |\n")
		sb.WriteString("|--------|-------|---------|----------|----------|-------|\n")
		for _, o := range r.PassedTraders {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.4f | %.4f | %.2f | %s |\n",
				o.WalletAddress, o.TokenSymbol,
				o.Stats.PnLPct30d, o.Stats.WinRate,
				o.Stats.RealizedProfitUSD, o.Stats.RealizedProfitRatio))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
