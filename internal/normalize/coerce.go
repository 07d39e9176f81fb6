package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// asString renders any scalar payload value as a string. Non-scalar values
// collapse to their default formatting; nil is empty.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return decimal.NewFromFloat(t).String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

// asFloat coerces a numeric or numeric-string payload value. JSON null (and
// any absent value passed as nil) is zero, not an error. Numeric strings go
// through decimal so values like "0.65" survive intact.
func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("parse number %q: %w", t, err)
		}
		return d.InexactFloat64(), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("parse number %q: %w", t.String(), err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}

// floatOrZero is asFloat with parse failures collapsed to zero.
func floatOrZero(v any) float64 {
	f, err := asFloat(v)
	if err != nil {
		return 0
	}
	return f
}

// asBool coerces a boolean payload value, with def for anything else.
func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// stringSlice interprets either a native ordered sequence of labels or a
// JSON-encoded string like `["Yes","No"]`.
func stringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		var decoded []string
		if err := json.Unmarshal([]byte(t), &decoded); err != nil {
			return nil, false
		}
		return decoded, true
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			s, ok := el.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	}
	return nil, false
}

// floatSlice interprets either a native array or a JSON-encoded string of
// numeric strings like `["0.65","0.35"]`.
func floatSlice(v any) ([]float64, bool) {
	var elems []any
	switch t := v.(type) {
	case string:
		var decoded []any
		if err := json.Unmarshal([]byte(t), &decoded); err != nil {
			return nil, false
		}
		elems = decoded
	case []any:
		elems = t
	default:
		return nil, false
	}

	out := make([]float64, 0, len(elems))
	for _, el := range elems {
		f, err := asFloat(el)
		if err != nil {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseISOTime parses an ISO-8601-like timestamp. A trailing literal "Z" is
// UTC; a missing zone is treated as UTC as well.
func parseISOTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// millisCutoff separates second-resolution from millisecond-resolution Unix
// timestamps: anything above it is milliseconds.
const millisCutoff = 1e12

// parseUnixOrISOTime handles the trade timestamp variants: numeric Unix
// seconds, numeric Unix milliseconds, or an ISO-8601 string.
func parseUnixOrISOTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case float64:
		secs := t
		if secs > millisCutoff {
			secs = secs / 1000
		}
		whole := int64(secs)
		frac := secs - float64(whole)
		return time.Unix(whole, int64(frac*float64(time.Second))).UTC(), nil
	case string:
		// Numeric strings show up here too.
		if f, err := asFloat(t); err == nil && f > 0 {
			return parseUnixOrISOTime(f)
		}
		return parseISOTime(t)
	}
	return time.Time{}, fmt.Errorf("timestamp %v (%T) is neither unix nor ISO-8601", v, v)
}
