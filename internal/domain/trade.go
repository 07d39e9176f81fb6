package domain

import "time"

// DefaultWhaleThreshold is the USD size at or above which a trade counts as
// a whale trade. Callers may supply their own threshold via MeetsThreshold;
// this constant is only the default.
const DefaultWhaleThreshold = 500.0

// Trade is one executed transaction on a market. Immutable after construction.
type Trade struct {
	ID           string
	MarketID     string // joins on Market.ID or Market.ConditionID depending on the source endpoint
	AssetID      string
	Side         Side
	Price        float64 // implied probability, [0,1]
	Size         float64 // USD notional
	Outcome      string
	Timestamp    time.Time
	MakerAddress string
	TakerAddress string
}

// NewTrade validates t and returns an immutable copy.
func NewTrade(t Trade) (*Trade, error) {
	if !t.Side.Valid() {
		return nil, invalidField("side", "must be BUY or SELL, got %q", string(t.Side))
	}
	if t.Price < 0 || t.Price > 1 {
		return nil, invalidField("price", "must be in [0,1], got %g", t.Price)
	}
	if t.Size < 0 {
		return nil, invalidField("size", "must be >= 0, got %g", t.Size)
	}
	out := t
	return &out, nil
}

// MeetsThreshold reports whether the trade's USD size is at least min.
// The boundary is inclusive.
func (t *Trade) MeetsThreshold(min float64) bool {
	return t.Size >= min
}

// IsWhale classifies the trade against the default threshold.
func (t *Trade) IsWhale() bool {
	return t.MeetsThreshold(DefaultWhaleThreshold)
}
