package screen

import (
	"github.com/huyhieublock/tradding/internal/domain"
)

// FeedEvent is one push from the market data feed: a ticker snapshot, an
// order book snapshot, or both. The Symbol tags which subscription the
// event belongs to so late events from a superseded symbol can be dropped.
type FeedEvent struct {
	Symbol string
	Ticker *domain.Ticker
	Book   *domain.OrderBookSnapshot
}

// Subscription is a cancellable per-symbol feed subscription. Events() is
// closed after Unsubscribe returns; no events are delivered afterwards.
type Subscription interface {
	Events() <-chan FeedEvent
	Unsubscribe()
}

// Feed is the market data feed boundary. The transport behind it (polling
// or a persistent connection) is outside this core's contract; only the
// snapshot and tick shapes matter.
type Feed interface {
	Subscribe(symbol string) (Subscription, error)
}
