package reporting

import (
	"fmt"
	"strings"

	"solana-trader-screener/internal/domain"
)

// RenderPassedCSV renders passed traders as CSV string.
func RenderPassedCSV(passed []*domain.EvaluationOutcome) string {
	var sb strings.Builder

	// Header
	sb.WriteString("wallet_address,token_address,token_symbol,pnl_pct_30d,pnl_usd_30d,win_rate,")
	sb.WriteString("realized_profit_usd,realized_profit_ratio,tx_count_30d,evaluated_at\n")

	// Rows
	for _, o := range passed {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.6f,%.2f,%.6f,%.2f,%s,%d,%d\n",
			o.WalletAddress,
			o.TokenAddress,
			o.TokenSymbol,
			o.Stats.PnLPct30d,
			o.Stats.PnLUSD30d,
			o.Stats.WinRate,
			o.Stats.RealizedProfitUSD,
			o.Stats.RealizedProfitRatio,
			o.Stats.TxCount30d,
			o.EvaluatedAt,
		))
	}

	return sb.String()
}
