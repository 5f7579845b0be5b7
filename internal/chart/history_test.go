package chart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyhieublock/tradding/internal/domain"
)

func decs(vals ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestHistoryResponse_Bars(t *testing.T) {
	t.Run("drops duplicate buckets keeping the first", func(t *testing.T) {
		resp := HistoryResponse{
			Status: StatusOK,
			Times:  []int64{100, 100, 200},
			Opens:  decs(10, 10, 11),
			Highs:  decs(10, 10, 12),
			Lows:   decs(9, 9, 10),
			Closes: decs(10, 10, 11),
		}

		bars := resp.Bars()

		require.Len(t, bars, 2)
		assert.Equal(t, int64(100), bars[0].Time)
		assert.Equal(t, int64(200), bars[1].Time)
		assert.True(t, bars[1].High.Equal(decimal.NewFromInt(12)))
	})

	t.Run("sorts an unsorted response", func(t *testing.T) {
		resp := HistoryResponse{
			Status: StatusOK,
			Times:  []int64{300, 100, 200},
			Opens:  decs(3, 1, 2),
			Highs:  decs(3, 1, 2),
			Lows:   decs(3, 1, 2),
			Closes: decs(3, 1, 2),
		}

		bars := resp.Bars()

		require.Len(t, bars, 3)
		for i := 1; i < len(bars); i++ {
			assert.Greater(t, bars[i].Time, bars[i-1].Time, "times must be strictly increasing")
		}
		assert.True(t, bars[0].Open.Equal(decimal.NewFromInt(1)), "values must move with their timestamps")
	})

	t.Run("zip is bounded by the shortest array", func(t *testing.T) {
		resp := HistoryResponse{
			Status: StatusOK,
			Times:  []int64{100, 200, 300},
			Opens:  decs(1, 2),
			Highs:  decs(1, 2, 3),
			Lows:   decs(1, 2, 3),
			Closes: decs(1, 2, 3),
		}

		assert.Len(t, resp.Bars(), 2)
	})

	t.Run("empty response yields no bars", func(t *testing.T) {
		assert.Empty(t, HistoryResponse{Status: StatusOK}.Bars())
	})
}

// stubFetcher returns a canned response or error and records the last range.
type stubFetcher struct {
	resp     HistoryResponse
	err      error
	lastFrom int64
	lastTo   int64
}

func (s *stubFetcher) FetchBars(_ context.Context, _ string, _ domain.Resolution, from, to int64) (HistoryResponse, error) {
	s.lastFrom, s.lastTo = from, to
	return s.resp, s.err
}

func TestLoader_Load(t *testing.T) {
	sel := domain.Selection{Symbol: "PERP_ETH_USDC", Resolution: domain.Resolution15m}

	t.Run("ok response is normalized", func(t *testing.T) {
		fetcher := &stubFetcher{resp: HistoryResponse{
			Status: StatusOK,
			Times:  []int64{200, 100},
			Opens:  decs(2, 1),
			Highs:  decs(2, 1),
			Lows:   decs(2, 1),
			Closes: decs(2, 1),
		}}
		loader := NewLoader(fetcher, 1000)

		bars, err := loader.Load(context.Background(), sel)

		require.NoError(t, err)
		require.Len(t, bars, 2)
		assert.Equal(t, int64(100), bars[0].Time)
	})

	t.Run("requested range covers windowBars buckets", func(t *testing.T) {
		fetcher := &stubFetcher{resp: HistoryResponse{
			Status: StatusOK,
			Times:  []int64{100},
			Opens:  decs(1), Highs: decs(1), Lows: decs(1), Closes: decs(1),
		}}
		loader := NewLoader(fetcher, 1000)
		loader.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

		_, err := loader.Load(context.Background(), sel)

		require.NoError(t, err)
		assert.Equal(t, int64(1_700_000_000), fetcher.lastTo)
		assert.Equal(t, int64(1_700_000_000-1000*900), fetcher.lastFrom)
		assert.Greater(t, fetcher.lastTo, fetcher.lastFrom)
	})

	t.Run("error status maps to ErrHistoryUnavailable", func(t *testing.T) {
		fetcher := &stubFetcher{resp: HistoryResponse{Status: StatusError}}
		loader := NewLoader(fetcher, 1000)

		_, err := loader.Load(context.Background(), sel)

		assert.ErrorIs(t, err, domain.ErrHistoryUnavailable)
	})

	t.Run("no_data status maps to ErrHistoryUnavailable", func(t *testing.T) {
		fetcher := &stubFetcher{resp: HistoryResponse{Status: StatusNoData}}
		loader := NewLoader(fetcher, 1000)

		_, err := loader.Load(context.Background(), sel)

		assert.ErrorIs(t, err, domain.ErrHistoryUnavailable)
	})

	t.Run("ok status with empty times is still unavailable", func(t *testing.T) {
		fetcher := &stubFetcher{resp: HistoryResponse{Status: StatusOK}}
		loader := NewLoader(fetcher, 1000)

		_, err := loader.Load(context.Background(), sel)

		assert.ErrorIs(t, err, domain.ErrHistoryUnavailable)
	})

	t.Run("transport failure is a retriable network error", func(t *testing.T) {
		fetcher := &stubFetcher{err: errors.New("connection reset")}
		loader := NewLoader(fetcher, 1000)

		_, err := loader.Load(context.Background(), sel)

		require.Error(t, err)
		assert.True(t, domain.IsRetriable(err))
	})
}
