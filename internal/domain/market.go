package domain

import "time"

// Market is one tradeable proposition. Values are constructed once per fetch
// and never mutated; a later fetch produces a new Market with the same ID.
type Market struct {
	ID          string  // upstream-assigned, unique
	ConditionID string  // secondary identifier used by the trade-data API
	Question    string
	Description string
	Slug        string
	Outcomes    []string  // ordered outcome labels
	OutcomePrices []float64 // price[i] describes Outcomes[i]; lengths may differ
	Volume      float64   // cumulative USD traded
	Liquidity   float64
	EndDate     *time.Time // nil when upstream omits or sends garbage
	Active      bool
}

// NewMarket validates m and returns an immutable copy. Prices must sit in
// [0,1], volume and liquidity must be non-negative. A length mismatch between
// Outcomes and OutcomePrices is allowed: extra outcomes are simply priceless.
func NewMarket(m Market) (*Market, error) {
	for i, p := range m.OutcomePrices {
		if p < 0 || p > 1 {
			return nil, invalidField("outcome_prices", "price %g at index %d outside [0,1]", p, i)
		}
	}
	if m.Volume < 0 {
		return nil, invalidField("volume", "must be >= 0, got %g", m.Volume)
	}
	if m.Liquidity < 0 {
		return nil, invalidField("liquidity", "must be >= 0, got %g", m.Liquidity)
	}
	out := m
	out.Outcomes = append([]string(nil), m.Outcomes...)
	out.OutcomePrices = append([]float64(nil), m.OutcomePrices...)
	return &out, nil
}

// PrimaryPrice is the price of the first outcome ("Yes" on binary markets).
func (m *Market) PrimaryPrice() (float64, bool) {
	if len(m.OutcomePrices) > 0 {
		return m.OutcomePrices[0], true
	}
	return 0, false
}

// SecondaryPrice is the price of the second outcome ("No" on binary markets).
func (m *Market) SecondaryPrice() (float64, bool) {
	if len(m.OutcomePrices) > 1 {
		return m.OutcomePrices[1], true
	}
	return 0, false
}

// OutcomePairs joins labels with their prices positionally. Labels past the
// end of the price list are omitted.
func (m *Market) OutcomePairs() []Outcome {
	n := len(m.Outcomes)
	if len(m.OutcomePrices) < n {
		n = len(m.OutcomePrices)
	}
	pairs := make([]Outcome, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, Outcome{Label: m.Outcomes[i], Price: m.OutcomePrices[i]})
	}
	return pairs
}

// Outcome is one labeled outcome with its implied-probability price.
type Outcome struct {
	Label string
	Price float64
}

// NewOutcome validates the price range.
func NewOutcome(label string, price float64) (Outcome, error) {
	if price < 0 || price > 1 {
		return Outcome{}, invalidField("price", "must be in [0,1], got %g", price)
	}
	return Outcome{Label: label, Price: price}, nil
}

// MarketWithTrades pairs one market with the trades believed to belong to it,
// so callers don't have to re-join the two collections. It carries no
// invariants of its own.
type MarketWithTrades struct {
	Market Market
	Trades []Trade
}
