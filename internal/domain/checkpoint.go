package domain

// TargetCheckpoint marks one target token as processed. Corresponds to
// processed_targets table in PostgreSQL. Written once per run per target,
// even when the run is stopped mid-target.
type TargetCheckpoint struct {
	TokenAddress string // PRIMARY KEY
	TokenName    string
	TokenSymbol  string
	WalletCount  int64 // deduplicated holders found for the target
	PassedCount  int64 // outcomes with reason PASS
	ProcessedAt  int64 // Unix timestamp in milliseconds
}
