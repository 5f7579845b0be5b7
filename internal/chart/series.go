package chart

import (
	"github.com/huyhieublock/tradding/internal/domain"
)

// Surface is the external chart rendering sink. The core never touches a
// drawing primitive: it hands over a full bar set, an incremental last-bar
// update, or a viewport instruction, and the collaborator does the rest.
type Surface interface {
	// ReplaceAll replaces the rendered bar set wholesale.
	ReplaceAll(candles []domain.Candle)
	// UpdateLast redraws only the trailing bar.
	UpdateLast(candle domain.Candle)
	// FitContent zooms the viewport to the current bar set.
	FitContent()
	// Clear blanks the surface ahead of a new selection.
	Clear()
}

// Series owns the ordered candle sequence for the active (symbol, resolution)
// pair and pushes every change to its Surface.
//
// Ownership: the history loader is the only writer allowed to replace the
// series wholesale, the tick merger the only one allowed to mutate the
// trailing candle. Both run on the screen's event loop goroutine, so the
// series needs no locking.
type Series struct {
	surface Surface
	bars    []domain.Candle
}

// NewSeries creates an empty series bound to a rendering surface.
func NewSeries(surface Surface) *Series {
	return &Series{surface: surface}
}

// SetData replaces the whole series and re-renders the full bar set.
// The caller is responsible for bars being sorted and deduplicated.
func (s *Series) SetData(bars []domain.Candle) {
	s.bars = bars
	s.surface.ReplaceAll(bars)
}

// UpdateLast replaces the trailing candle in place and redraws only it.
// No-op on an empty series.
func (s *Series) UpdateLast(c domain.Candle) {
	if len(s.bars) == 0 {
		return
	}
	s.bars[len(s.bars)-1] = c
	s.surface.UpdateLast(c)
}

// Last returns the trailing candle, if any.
func (s *Series) Last() (domain.Candle, bool) {
	if len(s.bars) == 0 {
		return domain.Candle{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// Len returns the number of candles held.
func (s *Series) Len() int {
	return len(s.bars)
}

// Bars returns a copy of the series for external reads.
func (s *Series) Bars() []domain.Candle {
	out := make([]domain.Candle, len(s.bars))
	copy(out, s.bars)
	return out
}

// Reset drops all candles and blanks the surface. Called on every symbol or
// resolution change before the new selection's data arrives.
func (s *Series) Reset() {
	s.bars = nil
	s.surface.Clear()
}

// FitContent asks the surface to zoom to the current bar set.
func (s *Series) FitContent() {
	s.surface.FitContent()
}
