package orderly

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// tvHistoryResponse is the charting endpoint payload: parallel arrays
// indexed positionally, TradingView UDF style.
type tvHistoryResponse struct {
	Status string        `json:"s"` // "ok" | "error" | "no_data"
	Times  []int64       `json:"t"`
	Opens  []json.Number `json:"o"`
	Highs  []json.Number `json:"h"`
	Lows   []json.Number `json:"l"`
	Closes []json.Number `json:"c"`
	ErrMsg string        `json:"errmsg,omitempty"`
}

// wsEnvelope is the common frame wrapper on the market stream.
type wsEnvelope struct {
	ID    string          `json:"id,omitempty"`
	Topic string          `json:"topic,omitempty"`
	Event string          `json:"event,omitempty"`
	Ts    int64           `json:"ts,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// wsOp is an outgoing subscribe/unsubscribe/pong frame.
type wsOp struct {
	ID    string `json:"id,omitempty"`
	Event string `json:"event"`
	Topic string `json:"topic,omitempty"`
}

// tickerData is the {symbol}@ticker payload (rolling 24h stats).
type tickerData struct {
	Symbol string      `json:"symbol"`
	Open   json.Number `json:"open"`
	Close  json.Number `json:"close"`
	High   json.Number `json:"high"`
	Low    json.Number `json:"low"`
	Volume json.Number `json:"volume"` // base volume
	Amount json.Number `json:"amount"` // quote volume
}

// markPriceData is the {symbol}@markprice payload.
type markPriceData struct {
	Price json.Number `json:"price"`
}

// orderbookData is the {symbol}@orderbook snapshot payload. Levels are
// [price, quantity] pairs, asks ascending and bids descending.
type orderbookData struct {
	Symbol    string          `json:"symbol,omitempty"`
	Asks      [][]json.Number `json:"asks"`
	Bids      [][]json.Number `json:"bids"`
	MarkPrice json.Number     `json:"markPrice,omitempty"`
	Ts        int64           `json:"ts,omitempty"`
}

// toDecimal converts a wire number, rejecting empty and non-numeric values.
func toDecimal(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Decimal{}, fmt.Errorf("empty number")
	}
	return decimal.NewFromString(n.String())
}

// toDecimalPtr converts an optional wire number; empty becomes nil.
func toDecimalPtr(n json.Number) *decimal.Decimal {
	d, err := toDecimal(n)
	if err != nil {
		return nil
	}
	return &d
}
