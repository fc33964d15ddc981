package domain

// EvaluationLogEntry is one row of the append-only run history kept in
// ClickHouse. Unlike EvaluationOutcome it is never overwritten: every run
// appends its own entries under a fresh RunID.
type EvaluationLogEntry struct {
	RunID         string
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	Reason        ReasonCode
	PnLPct30d     float64
	WinRate       float64
	EvaluatedAt   int64 // Unix timestamp in milliseconds
}
