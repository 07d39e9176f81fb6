package domain

import "strings"

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide matches a raw token against BUY/SELL, case-insensitively.
// The canonical form is always upper-case on output.
func ParseSide(raw string) (Side, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(SideBuy):
		return SideBuy, true
	case string(SideSell):
		return SideSell, true
	}
	return "", false
}

// Valid reports whether the side is one of the two canonical tokens.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}
