// Package normalize maps arbitrary upstream JSON objects into domain values,
// absorbing the upstream APIs' format variance: duplicate field spellings,
// numbers encoded as strings, outcome lists shipped as JSON-encoded text,
// and timestamps in seconds, milliseconds or ISO-8601. A malformed element
// produces a per-element error; it never fails a batch.
package normalize

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/whalebot/gowhale/internal/domain"
)

var log = logrus.WithField("component", "normalizer")

// now is stubbed in tests that exercise the timestamp fallback.
var now = time.Now

// Error reports that a single upstream element could not be normalized.
// The surrounding batch continues without it.
type Error struct {
	Kind     string // "market" or "trade"
	EntityID string // upstream id when known, may be empty
	Err      error
}

func (e *Error) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("normalize %s %s: %v", e.Kind, e.EntityID, e.Err)
	}
	return fmt.Sprintf("normalize %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Market maps one upstream market object into a validated domain.Market.
// The upstream id is the one hard requirement; everything else degrades to
// a documented default.
func Market(raw map[string]any) (*domain.Market, error) {
	id := asString(raw["id"])
	if id == "" {
		return nil, &Error{Kind: "market", Err: fmt.Errorf("missing id")}
	}

	m := domain.Market{
		ID:          id,
		ConditionID: pickString(raw, marketConditionIDKeys),
		Question:    asString(raw["question"]),
		Description: asString(raw["description"]),
		Slug:        asString(raw["slug"]),
		Outcomes:    outcomeLabels(raw),
		OutcomePrices: outcomePrices(raw),
		Volume:      floatOrZero(raw["volume"]),
		Liquidity:   floatOrZero(raw["liquidity"]),
		Active:      asBool(raw["active"], true),
	}

	if s := asString(raw["endDate"]); s != "" {
		if ts, err := parseISOTime(s); err == nil {
			m.EndDate = &ts
		}
		// A bad end date never fails the element.
	}

	built, err := domain.NewMarket(m)
	if err != nil {
		return nil, &Error{Kind: "market", EntityID: id, Err: err}
	}
	return built, nil
}

// outcomePrices applies the price lookup order: a dedicated outcomePrices
// field (possibly JSON-encoded text), then prices embedded in outcome
// objects, then empty.
func outcomePrices(raw map[string]any) []float64 {
	if v, ok := raw["outcomePrices"]; ok {
		if prices, ok := floatSlice(v); ok {
			return prices
		}
	}
	if outcomes, ok := raw["outcomes"].([]any); ok {
		var prices []float64
		for _, el := range outcomes {
			obj, ok := el.(map[string]any)
			if !ok {
				continue
			}
			if p, ok := obj["price"]; ok {
				prices = append(prices, floatOrZero(p))
			}
		}
		return prices
	}
	return nil
}

// outcomeLabels decodes the outcomes field, falling back to the Yes/No pair
// when the payload carries nothing usable.
func outcomeLabels(raw map[string]any) []string {
	if v, ok := raw["outcomes"]; ok {
		if labels, ok := stringSlice(v); ok {
			return labels
		}
	}
	return []string{"Yes", "No"}
}

// Trade maps one upstream trade object into a validated domain.Trade.
func Trade(raw map[string]any) (*domain.Trade, error) {
	id := asString(raw["id"])

	ts, err := tradeTimestamp(raw)
	if err != nil {
		// Provenance-degraded rather than rejected: fall back to the
		// processing time.
		ts = now().UTC()
	}

	t := domain.Trade{
		ID:           id,
		MarketID:     pickString(raw, tradeMarketKeys),
		AssetID:      pickString(raw, tradeAssetKeys),
		Side:         tradeSide(raw, id),
		Price:        floatOrZero(raw["price"]),
		Size:         floatOrZero(raw["size"]),
		Outcome:      asString(raw["outcome"]),
		Timestamp:    ts,
		MakerAddress: pickString(raw, tradeMakerKeys),
		TakerAddress: pickString(raw, tradeTakerKeys),
	}

	built, err := domain.NewTrade(t)
	if err != nil {
		return nil, &Error{Kind: "trade", EntityID: id, Err: err}
	}
	return built, nil
}

func tradeTimestamp(raw map[string]any) (time.Time, error) {
	v, ok := raw["timestamp"]
	if !ok || v == nil {
		return time.Time{}, fmt.Errorf("timestamp missing")
	}
	return parseUnixOrISOTime(v)
}

// tradeSide resolves the side token, defaulting unknown tokens to BUY. The
// fallback keeps upstream compatibility but is logged, since it can
// misclassify SELL-like tokens with nonstandard spellings.
func tradeSide(raw map[string]any, id string) domain.Side {
	token := asString(raw["side"])
	if side, ok := domain.ParseSide(token); ok {
		return side
	}
	if token != "" {
		log.WithFields(logrus.Fields{"trade_id": id, "side": token}).
			Warn("unrecognized trade side, defaulting to BUY")
	}
	return domain.SideBuy
}
