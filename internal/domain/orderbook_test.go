package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func level(price, qty int64) PriceLevel {
	return PriceLevel{Price: decimal.NewFromInt(price), Quantity: decimal.NewFromInt(qty)}
}

func TestPriceLevel_Valid(t *testing.T) {
	if !level(100, 5).Valid() {
		t.Error("normal level should be valid")
	}
	if !level(100, 0).Valid() {
		t.Error("zero quantity is allowed")
	}
	if level(0, 5).Valid() {
		t.Error("zero price should be invalid")
	}
	if (PriceLevel{Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(-1)}).Valid() {
		t.Error("negative quantity should be invalid")
	}
}

func TestPriceLevel_Total(t *testing.T) {
	if !level(101, 5).Total().Equal(decimal.NewFromInt(505)) {
		t.Errorf("Total = %v, want 505", level(101, 5).Total())
	}
}

func TestOrderBookSnapshot_Crossed(t *testing.T) {
	t.Run("normal book", func(t *testing.T) {
		snap := OrderBookSnapshot{
			Asks: []PriceLevel{level(101, 5)},
			Bids: []PriceLevel{level(99, 8)},
		}
		if snap.Crossed() {
			t.Error("ask above bid should not be crossed")
		}
	})

	t.Run("crossed book", func(t *testing.T) {
		snap := OrderBookSnapshot{
			Asks: []PriceLevel{level(98, 5)},
			Bids: []PriceLevel{level(99, 8)},
		}
		if !snap.Crossed() {
			t.Error("ask below bid should be crossed")
		}
	})

	t.Run("empty side", func(t *testing.T) {
		snap := OrderBookSnapshot{Bids: []PriceLevel{level(99, 8)}}
		if snap.Crossed() {
			t.Error("one-sided book can never be crossed")
		}
		if snap.BestAsk() != nil {
			t.Error("BestAsk should be nil for empty ask side")
		}
		if snap.BestBid() == nil {
			t.Error("BestBid should exist")
		}
	})
}

func TestBaseToken(t *testing.T) {
	cases := map[string]string{
		"PERP_ETH_USDC": "ETH",
		"PERP_BTC_USDC": "BTC",
		"BTCUSDT":       "BTCUSDT",
	}
	for in, want := range cases {
		if got := BaseToken(in); got != want {
			t.Errorf("BaseToken(%q) = %q, want %q", in, got, want)
		}
	}
}
