package chart

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/huyhieublock/tradding/internal/domain"
)

// History endpoint status values.
const (
	StatusOK     = "ok"
	StatusError  = "error"
	StatusNoData = "no_data"
)

// DefaultWindowBars is how many buckets of history the chart requests,
// windowed back from "now".
const DefaultWindowBars = 1000

// HistoryResponse mirrors the charting endpoint's parallel-array payload:
// {s, t[], o[], h[], l[], c[]} indexed positionally.
type HistoryResponse struct {
	Status string
	Times  []int64
	Opens  []decimal.Decimal
	Highs  []decimal.Decimal
	Lows   []decimal.Decimal
	Closes []decimal.Decimal
}

// Bars zips the parallel arrays into candles, sorted ascending by time with
// only the first occurrence of any repeated bucket retained. Protocol-level
// duplicates are dropped silently; a short price array truncates the zip.
func (r HistoryResponse) Bars() []domain.Candle {
	n := len(r.Times)
	for _, arr := range [][]decimal.Decimal{r.Opens, r.Highs, r.Lows, r.Closes} {
		if len(arr) < n {
			n = len(arr)
		}
	}

	out := make([]domain.Candle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Candle{
			Time:  r.Times[i],
			Open:  r.Opens[i],
			High:  r.Highs[i],
			Low:   r.Lows[i],
			Close: r.Closes[i],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})

	// First occurrence wins on duplicate buckets.
	dedup := out[:0]
	var prev int64
	for i, c := range out {
		if i > 0 && c.Time == prev {
			continue
		}
		dedup = append(dedup, c)
		prev = c.Time
	}
	return dedup
}

// BarFetcher is the historical bars endpoint boundary, implemented by the
// market data adapter.
type BarFetcher interface {
	FetchBars(ctx context.Context, symbol string, resolution domain.Resolution, from, to int64) (HistoryResponse, error)
}

// Loader issues the historical-range request for a selection and normalizes
// the result. It is a pure fetch-and-shape component: applying the bars to
// the series (and discarding superseded responses) belongs to the screen
// controller, which owns the generation token.
type Loader struct {
	fetcher    BarFetcher
	windowBars int
	now        func() time.Time
}

// NewLoader creates a loader requesting windowBars buckets back from now.
func NewLoader(fetcher BarFetcher, windowBars int) *Loader {
	if windowBars <= 0 {
		windowBars = DefaultWindowBars
	}
	return &Loader{
		fetcher:    fetcher,
		windowBars: windowBars,
		now:        time.Now,
	}
}

// Load fetches and normalizes the historical window for sel.
// Returns ErrHistoryUnavailable for a non-ok status or an empty range.
func (l *Loader) Load(ctx context.Context, sel domain.Selection) ([]domain.Candle, error) {
	to := l.now().Unix()
	from := to - int64(l.windowBars)*sel.Resolution.BucketSeconds()

	resp, err := l.fetcher.FetchBars(ctx, sel.Symbol, sel.Resolution, from, to)
	if err != nil {
		return nil, domain.NewNetworkError("history fetch", err)
	}

	if resp.Status != StatusOK || len(resp.Times) == 0 {
		return nil, fmt.Errorf("%w: status=%s bars=%d", domain.ErrHistoryUnavailable, resp.Status, len(resp.Times))
	}

	return resp.Bars(), nil
}
