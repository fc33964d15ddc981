package domain

// EvaluationOutcome is the stored result of screening one wallet against
// one target token. Corresponds to trader_outcomes table in PostgreSQL.
// Keyed by (WalletAddress, TokenAddress); re-screening replaces the row.
type EvaluationOutcome struct {
	WalletAddress string // PRIMARY KEY part
	TokenAddress  string // PRIMARY KEY part
	TokenName     string
	TokenSymbol   string
	Reason        ReasonCode
	Stats         WalletStats
	EvaluatedAt   int64 // Unix timestamp in milliseconds
}
