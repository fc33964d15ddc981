package decision

// Default filter thresholds.
const (
	// DefaultMinPnL30Pct is the 30-day PnL percent a wallet must EXCEED.
	// The boundary is exclusive: exactly 0.75 fails.
	DefaultMinPnL30Pct = 0.75

	// DefaultMinHoldingROI is the ROI at least one top holding must reach.
	DefaultMinHoldingROI = 0.30

	// DefaultTopHoldings is how many top holdings are inspected.
	DefaultTopHoldings = 3

	// DefaultPeriod is the stats API summary period.
	DefaultPeriod = "7d"
)

// Config holds the filter thresholds for wallet evaluation.
type Config struct {
	// DisallowedTags rejects wallets carrying any of these tags,
	// checked in order.
	DisallowedTags []string

	// MinPnL30Pct is the exclusive 30-day PnL percent threshold.
	MinPnL30Pct float64

	// MinHoldingROI is the ROI at least one top holding must reach.
	MinHoldingROI float64

	// TopHoldings is how many top holdings are inspected.
	TopHoldings int

	// Period is the stats API summary period.
	Period string
}

// DefaultConfig returns the production filter thresholds.
func DefaultConfig() Config {
	return Config{
		DisallowedTags: []string{"sandwich_bot"},
		MinPnL30Pct:    DefaultMinPnL30Pct,
		MinHoldingROI:  DefaultMinHoldingROI,
		TopHoldings:    DefaultTopHoldings,
		Period:         DefaultPeriod,
	}
}

// withDefaults fills zero-valued fields. A zero MinPnL30Pct is kept as-is
// so a deliberately permissive threshold stays possible; only structural
// fields are defaulted.
func (c Config) withDefaults() Config {
	if c.TopHoldings <= 0 {
		c.TopHoldings = DefaultTopHoldings
	}
	if c.Period == "" {
		c.Period = DefaultPeriod
	}
	return c
}
