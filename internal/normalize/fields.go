package normalize

// The upstream APIs spell several fields more than one way. Each field gets
// an ordered candidate list; the first key present in the payload wins.
var (
	marketConditionIDKeys = []string{"conditionId", "condition_id"}
	tradeMarketKeys       = []string{"market", "market_id"}
	tradeAssetKeys        = []string{"asset_id", "assetId"}
	tradeMakerKeys        = []string{"maker_address", "makerAddress"}
	tradeTakerKeys        = []string{"taker_address", "takerAddress"}
)

// pick returns the first candidate key present in obj.
func pick(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// pickString coerces the first present candidate to a string, or returns
// the empty default.
func pickString(obj map[string]any, keys []string) string {
	v, ok := pick(obj, keys)
	if !ok {
		return ""
	}
	return asString(v)
}
