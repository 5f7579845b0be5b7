package domain

import "github.com/shopspring/decimal"

// PriceLevel is one rung of the order book ladder.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Valid reports whether the level is usable for depth projection.
// The feed occasionally ships empty or negative entries; those are
// excluded from rendering rather than failing the whole snapshot.
func (l PriceLevel) Valid() bool {
	return l.Price.IsPositive() && !l.Quantity.IsNegative()
}

// Total returns the notional value of the level (price * quantity).
func (l PriceLevel) Total() decimal.Decimal {
	return l.Price.Mul(l.Quantity)
}

// OrderBookSnapshot is a full point-in-time view of both sides of the book.
// Asks are ordered ascending by price, bids descending; no duplicate price
// appears within a side.
type OrderBookSnapshot struct {
	Symbol    string           `json:"symbol"`
	Asks      []PriceLevel     `json:"asks"`
	Bids      []PriceLevel     `json:"bids"`
	MarkPrice *decimal.Decimal `json:"mark_price,omitempty"`
}

// BestAsk returns the lowest ask, or nil when the side is empty.
func (s *OrderBookSnapshot) BestAsk() *PriceLevel {
	if len(s.Asks) == 0 {
		return nil
	}
	return &s.Asks[0]
}

// BestBid returns the highest bid, or nil when the side is empty.
func (s *OrderBookSnapshot) BestBid() *PriceLevel {
	if len(s.Bids) == 0 {
		return nil
	}
	return &s.Bids[0]
}

// Crossed reports whether best ask < best bid. A crossed book is a feed
// inconsistency: callers log it and render the snapshot as delivered.
func (s *OrderBookSnapshot) Crossed() bool {
	ask, bid := s.BestAsk(), s.BestBid()
	if ask == nil || bid == nil {
		return false
	}
	return ask.Price.LessThan(bid.Price)
}
