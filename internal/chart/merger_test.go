package chart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyhieublock/tradding/internal/domain"
)

func markTicker(symbol string, mark int64) domain.Ticker {
	m := decimal.NewFromInt(mark)
	return domain.Ticker{Symbol: symbol, MarkPrice: &m}
}

func TestMerger_OnTick(t *testing.T) {
	t.Run("extends trailing candle", func(t *testing.T) {
		surf := &fakeSurface{}
		series := NewSeries(surf)
		series.SetData([]domain.Candle{candleAt(100, 100, 102, 99, 101)})
		merger := NewMerger(series)

		applied := merger.OnTick(markTicker("PERP_ETH_USDC", 105))

		require.True(t, applied)
		last, _ := series.Last()
		assert.True(t, last.Open.Equal(decimal.NewFromInt(100)))
		assert.True(t, last.High.Equal(decimal.NewFromInt(105)))
		assert.True(t, last.Low.Equal(decimal.NewFromInt(99)))
		assert.True(t, last.Close.Equal(decimal.NewFromInt(105)))
		// Incremental path only: no full replace beyond the initial SetData.
		assert.Len(t, surf.replaced, 1)
		assert.Len(t, surf.lastUpdates, 1)
	})

	t.Run("empty series is a no-op", func(t *testing.T) {
		surf := &fakeSurface{}
		merger := NewMerger(NewSeries(surf))

		assert.False(t, merger.OnTick(markTicker("PERP_ETH_USDC", 105)))
		assert.Empty(t, surf.lastUpdates)
	})

	t.Run("missing mark price is a no-op", func(t *testing.T) {
		surf := &fakeSurface{}
		series := NewSeries(surf)
		series.SetData([]domain.Candle{candleAt(100, 100, 102, 99, 101)})
		merger := NewMerger(series)

		assert.False(t, merger.OnTick(domain.Ticker{Symbol: "PERP_ETH_USDC"}))
		assert.Empty(t, surf.lastUpdates)
	})

	t.Run("high and low are monotonic across ticks", func(t *testing.T) {
		surf := &fakeSurface{}
		series := NewSeries(surf)
		series.SetData([]domain.Candle{candleAt(100, 100, 100, 100, 100)})
		merger := NewMerger(series)

		marks := []int64{103, 101, 97, 99, 104}
		prevHigh := decimal.NewFromInt(100)
		prevLow := decimal.NewFromInt(100)
		for _, mark := range marks {
			merger.OnTick(markTicker("PERP_ETH_USDC", mark))
			last, _ := series.Last()
			assert.True(t, last.High.GreaterThanOrEqual(prevHigh), "high must never decrease")
			assert.True(t, last.Low.LessThanOrEqual(prevLow), "low must never increase")
			assert.True(t, last.Open.Equal(decimal.NewFromInt(100)), "open stays fixed")
			assert.True(t, last.Close.Equal(decimal.NewFromInt(mark)))
			prevHigh, prevLow = last.High, last.Low
		}

		last, _ := series.Last()
		assert.True(t, last.High.Equal(decimal.NewFromInt(104)))
		assert.True(t, last.Low.Equal(decimal.NewFromInt(97)))
	})

	t.Run("no rollover across bucket boundaries", func(t *testing.T) {
		surf := &fakeSurface{}
		series := NewSeries(surf)
		series.SetData([]domain.Candle{candleAt(100, 100, 102, 99, 101)})
		merger := NewMerger(series)

		// However many ticks arrive, the series never grows: the trailing
		// bar keeps extending until the next history refresh.
		for i := int64(0); i < 10; i++ {
			merger.OnTick(markTicker("PERP_ETH_USDC", 100+i))
		}
		assert.Equal(t, 1, series.Len())
	})
}
