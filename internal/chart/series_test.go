package chart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyhieublock/tradding/internal/domain"
)

// fakeSurface records every rendering instruction it receives.
type fakeSurface struct {
	replaced    [][]domain.Candle
	lastUpdates []domain.Candle
	fits        int
	clears      int
}

func (f *fakeSurface) ReplaceAll(candles []domain.Candle) {
	f.replaced = append(f.replaced, candles)
}

func (f *fakeSurface) UpdateLast(candle domain.Candle) {
	f.lastUpdates = append(f.lastUpdates, candle)
}

func (f *fakeSurface) FitContent() { f.fits++ }
func (f *fakeSurface) Clear()      { f.clears++ }

func candleAt(ts int64, o, h, l, c int64) domain.Candle {
	return domain.Candle{
		Time:  ts,
		Open:  decimal.NewFromInt(o),
		High:  decimal.NewFromInt(h),
		Low:   decimal.NewFromInt(l),
		Close: decimal.NewFromInt(c),
	}
}

func TestSeries_SetData(t *testing.T) {
	surf := &fakeSurface{}
	series := NewSeries(surf)

	bars := []domain.Candle{candleAt(100, 10, 12, 9, 11), candleAt(200, 11, 13, 10, 12)}
	series.SetData(bars)

	assert.Equal(t, 2, series.Len())
	require.Len(t, surf.replaced, 1)
	assert.Equal(t, bars, surf.replaced[0])

	last, ok := series.Last()
	require.True(t, ok)
	assert.Equal(t, int64(200), last.Time)
}

func TestSeries_UpdateLast(t *testing.T) {
	surf := &fakeSurface{}
	series := NewSeries(surf)

	t.Run("empty series is a no-op", func(t *testing.T) {
		series.UpdateLast(candleAt(100, 10, 12, 9, 11))
		assert.Empty(t, surf.lastUpdates)
	})

	t.Run("mutates only the trailing candle", func(t *testing.T) {
		series.SetData([]domain.Candle{candleAt(100, 10, 12, 9, 11), candleAt(200, 11, 13, 10, 12)})

		updated := candleAt(200, 11, 15, 10, 15)
		series.UpdateLast(updated)

		require.Len(t, surf.lastUpdates, 1)
		assert.Equal(t, updated, surf.lastUpdates[0])

		bars := series.Bars()
		assert.Equal(t, int64(100), bars[0].Time, "earlier bars untouched")
		assert.True(t, bars[1].Close.Equal(decimal.NewFromInt(15)))
		// Full replaces happen only through SetData.
		assert.Len(t, surf.replaced, 1)
	})
}

func TestSeries_Reset(t *testing.T) {
	surf := &fakeSurface{}
	series := NewSeries(surf)
	series.SetData([]domain.Candle{candleAt(100, 10, 12, 9, 11)})

	series.Reset()

	assert.Equal(t, 0, series.Len())
	assert.Equal(t, 1, surf.clears)
	_, ok := series.Last()
	assert.False(t, ok)
}

func TestSeries_BarsReturnsCopy(t *testing.T) {
	surf := &fakeSurface{}
	series := NewSeries(surf)
	series.SetData([]domain.Candle{candleAt(100, 10, 12, 9, 11)})

	bars := series.Bars()
	bars[0].Close = decimal.NewFromInt(999)

	last, _ := series.Last()
	assert.True(t, last.Close.Equal(decimal.NewFromInt(11)), "external mutation must not leak into the store")
}
