package gmgn

import "encoding/json"

// envelope is the wrapper GMGN puts around every JSON response. A non-zero
// Code signals an application-level error even when the HTTP status is 200.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// WalletSummary is the data section of the wallet_stat endpoint. Fields the
// upstream omits decode to their zero values.
type WalletSummary struct {
	Tags              []string `json:"tags"`
	WinRate           float64  `json:"winrate"`
	RealizedProfit7d  float64  `json:"realized_profit_7d"`
	RealizedProfit30d float64  `json:"realized_profit_30d"`
	PnL7d             float64  `json:"pnl_7d"`
	PnL30d            float64  `json:"pnl_30d"`
	Buy7d             int64    `json:"buy_7d"`
	Sell7d            int64    `json:"sell_7d"`
	Buy30d            int64    `json:"buy_30d"`
	Sell30d           int64    `json:"sell_30d"`
}

// HoldingEntry is one element of the wallet_holdings data array, already
// sorted by total profit on the upstream side.
type HoldingEntry struct {
	Token          HoldingToken `json:"token"`
	TotalProfit    float64      `json:"total_profit"`
	TotalProfitPnL float64      `json:"total_profit_pnl"`
}

// HoldingToken carries the token metadata nested inside a holding entry.
type HoldingToken struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// holdingsData is the data section of the wallet_holdings endpoint.
type holdingsData struct {
	Holdings []HoldingEntry `json:"holdings"`
}
