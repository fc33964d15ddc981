package domain

// DatabaseStats summarizes stored screening results.
type DatabaseStats struct {
	TargetCount   int64
	WalletCount   int64
	PassedCount   int64
	RecentTargets []*TargetCheckpoint // newest first, at most 5
}
