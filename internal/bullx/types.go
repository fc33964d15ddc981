package bullx

// Trader is one entry of a token's top-traders list as returned by the
// holders API.
type Trader struct {
	WalletAddress    string  `json:"walletAddress"`
	TotalBoughtUSD   float64 `json:"totalBoughtUSD"`
	TotalSoldUSD     float64 `json:"totalSoldUSD"`
	HoldingAmount    float64 `json:"currentlyHoldingAmount"`
	BuyTransactions  int64   `json:"totalBuyTransactions"`
	SellTransactions int64   `json:"totalSellTransactions"`
}

// holdersRequest is the POST body of the holdersSummaryV2 endpoint.
type holdersRequest struct {
	Name string             `json:"name"`
	Data holdersRequestData `json:"data"`
}

type holdersRequestData struct {
	TokenAddress string         `json:"tokenAddress"`
	SortBy       string         `json:"sortBy"`
	ChainID      int64          `json:"chainId"`
	Filters      holdersFilters `json:"filters"`
}

type holdersFilters struct {
	TagsFilters []string `json:"tagsFilters"`
}

// holdersEnvelope is the object response shape. The upstream sometimes
// returns the trader list bare instead; see Client.TopTraders.
type holdersEnvelope struct {
	Data []Trader `json:"data"`
}
