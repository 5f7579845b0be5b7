package chart

import (
	"github.com/huyhieublock/tradding/internal/domain"
)

// Merger folds live ticks into the trailing candle of a Series.
//
// Each tick rewrites the trailing candle with close = mark price and
// high/low widened to contain it; the open never moves. The merger never
// creates a new candle when wall-clock time crosses into the next bucket:
// the trailing bar keeps extending until the next history refresh replaces
// the series. Backfill and reordering are the history loader's job alone.
type Merger struct {
	series *Series
}

// NewMerger binds a merger to the series it updates.
func NewMerger(series *Series) *Merger {
	return &Merger{series: series}
}

// OnTick applies one ticker to the trailing candle via the surface's
// incremental-update path. Returns false (no-op) when the series is empty
// or the ticker carries no mark price yet.
func (m *Merger) OnTick(t domain.Ticker) bool {
	if !t.HasMark() {
		return false
	}
	last, ok := m.series.Last()
	if !ok {
		return false
	}
	m.series.UpdateLast(last.ApplyMark(*t.MarkPrice))
	return true
}
