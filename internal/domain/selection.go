package domain

import "strings"

// Selection is the active (symbol, resolution) pair for one screen.
// It is owned by the screen controller: every dependent component reads
// it and re-derives its own subscription when it changes, but mutation
// happens only through the controller's entry points.
type Selection struct {
	Symbol     string
	Resolution Resolution
}

// Key returns a stable identifier for the pair, used for logging.
func (s Selection) Key() string {
	return s.Symbol + ":" + string(s.Resolution)
}

// BaseToken extracts the base asset from a perp symbol.
// "PERP_ETH_USDC" -> "ETH". Falls back to the whole symbol when the
// shape is unexpected.
func BaseToken(symbol string) string {
	parts := strings.Split(symbol, "_")
	if len(parts) >= 2 {
		return parts[1]
	}
	return symbol
}
