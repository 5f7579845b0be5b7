// Package depth derives bounded, depth-normalized row sets for the order
// book panel from a constantly-mutating two-sided price ladder.
package depth

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/huyhieublock/tradding/internal/domain"
	"github.com/huyhieublock/tradding/internal/infra"
)

// DefaultRowCount is how many levels each side of the panel displays.
const DefaultRowCount = 14

// Row is one rendered level of the depth panel.
type Row struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Total    decimal.Decimal // Price * Quantity, for the rightmost column
	Bar      float64         // depth-bar width, percent in [0, 100]
}

// View is the complete render model for the depth panel.
//
// Asks are ordered for display: the worst displayed ask first, the best ask
// last so it sits nearest the midline, visually mirroring the bid side.
// Bids are best-first as delivered.
type View struct {
	Asks      []Row
	Bids      []Row
	MaxVolume decimal.Decimal
	MarkPrice *decimal.Decimal // center divider price, nil until known
}

// Project turns an order book snapshot into a bounded row set.
//
// Levels with a missing or negative price/quantity are excluded rather than
// aborting the render. A crossed book (best ask below best bid) is logged as
// a feed inconsistency and rendered as delivered. The mark price prefers the
// ticker's value and falls back to the snapshot's own: the ticker updates
// faster than book snapshots in the source feed.
func Project(snap domain.OrderBookSnapshot, ticker domain.Ticker, rowCount int) View {
	if rowCount <= 0 {
		rowCount = DefaultRowCount
	}

	if snap.Crossed() {
		slog.Warn("Crossed order book snapshot",
			slog.String("symbol", snap.Symbol),
			slog.String("best_ask", snap.BestAsk().Price.String()),
			slog.String("best_bid", snap.BestBid().Price.String()))
	}

	asks := takeValid(snap.Asks, rowCount, snap.Symbol, "ask")
	bids := takeValid(snap.Bids, rowCount, snap.Symbol, "bid")

	// Depth is relative to the largest visible quantity on either side.
	// The floor of 1 avoids division by zero when both sides are empty.
	maxVol := decimal.NewFromInt(1)
	for _, l := range asks {
		if l.Quantity.GreaterThan(maxVol) {
			maxVol = l.Quantity
		}
	}
	for _, l := range bids {
		if l.Quantity.GreaterThan(maxVol) {
			maxVol = l.Quantity
		}
	}

	view := View{
		Asks:      make([]Row, 0, len(asks)),
		Bids:      make([]Row, 0, len(bids)),
		MaxVolume: maxVol,
		MarkPrice: markPrice(snap, ticker),
	}

	// Best-N asks arrive ascending; reverse them so the best ask renders
	// nearest the midline.
	for i := len(asks) - 1; i >= 0; i-- {
		view.Asks = append(view.Asks, makeRow(asks[i], maxVol))
	}
	for _, l := range bids {
		view.Bids = append(view.Bids, makeRow(l, maxVol))
	}

	return view
}

// takeValid collects up to n renderable levels from one side.
func takeValid(levels []domain.PriceLevel, n int, symbol, side string) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, n)
	for _, l := range levels {
		if len(out) == n {
			break
		}
		if !l.Valid() {
			infra.GlobalMetrics.RecordMalformedLevel()
			slog.Debug("Dropping malformed book level",
				slog.String("symbol", symbol),
				slog.String("side", side),
				slog.String("price", l.Price.String()),
				slog.String("quantity", l.Quantity.String()))
			continue
		}
		out = append(out, l)
	}
	return out
}

func makeRow(l domain.PriceLevel, maxVol decimal.Decimal) Row {
	width, _ := l.Quantity.Div(maxVol).Mul(decimal.NewFromInt(100)).Float64()
	// Clamp so a single outsized level cannot overflow the bar.
	if width > 100 {
		width = 100
	}
	if width < 0 {
		width = 0
	}
	return Row{
		Price:    l.Price,
		Quantity: l.Quantity,
		Total:    l.Total(),
		Bar:      width,
	}
}

func markPrice(snap domain.OrderBookSnapshot, ticker domain.Ticker) *decimal.Decimal {
	if ticker.MarkPrice != nil {
		return ticker.MarkPrice
	}
	return snap.MarkPrice
}
