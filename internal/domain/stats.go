package domain

// Holding is one top-holdings entry for a wallet.
type Holding struct {
	Symbol string  // token symbol
	ROI    float64 // total profit PnL, 1.0 == +100%
}

// WalletStats aggregates the per-wallet figures an evaluation stores.
// Performance fields come from the stats API; trade fields come from the
// holders API and are merged in by the coordinator.
type WalletStats struct {
	// Stats API fields
	Tags        []string
	WinRate     float64
	PnLUSD7d    float64
	PnLUSD30d   float64
	PnLPct7d    float64 // 1.0 == +100%
	PnLPct30d   float64
	TxCount7d   int64 // buys + sells, trailing 7 days
	TxCount30d  int64
	TopHoldings []Holding

	// Holders API fields
	TotalBoughtUSD      float64
	TotalSoldUSD        float64
	RealizedProfitUSD   float64 // sold - bought
	RealizedProfitRatio string  // "1.25x" style, "0.0x" when nothing bought
	HoldingAmount       float64
	BuyTxCount          int64
	SellTxCount         int64
}
