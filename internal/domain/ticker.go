package domain

import "github.com/shopspring/decimal"

// Ticker is a live market snapshot pushed by the feed for one symbol.
// Fields the feed has not delivered yet are nil.
type Ticker struct {
	Symbol    string           `json:"symbol"`
	MarkPrice *decimal.Decimal `json:"mark_price,omitempty"` // Reference price for chart ticking
	Open24h   *decimal.Decimal `json:"open_24h,omitempty"`
	Volume24h *decimal.Decimal `json:"volume_24h,omitempty"`
	Change24h *decimal.Decimal `json:"change_24h,omitempty"` // 24h change ratio
}

// HasMark reports whether the feed has delivered a mark price yet.
func (t Ticker) HasMark() bool {
	return t.MarkPrice != nil
}

// ChangeDirection returns "positive", "negative", or "neutral"
func (t Ticker) ChangeDirection() string {
	if t.Change24h == nil {
		return "neutral"
	}
	if t.Change24h.IsPositive() {
		return "positive"
	}
	if t.Change24h.IsNegative() {
		return "negative"
	}
	return "neutral"
}
