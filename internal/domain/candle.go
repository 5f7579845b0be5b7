package domain

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Resolution selects how wall-clock time maps to candle buckets.
// Values mirror the charting endpoint: minutes as digits, "1D" for daily.
type Resolution string

const (
	Resolution1m  Resolution = "1"
	Resolution5m  Resolution = "5"
	Resolution15m Resolution = "15"
	Resolution1h  Resolution = "60"
	Resolution1D  Resolution = "1D"
)

// ParseResolution validates a raw resolution string (e.g. from config or a
// toolbar toggle) and returns the typed value.
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case Resolution1m, Resolution5m, Resolution15m, Resolution1h, Resolution1D:
		return Resolution(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidResolution, s)
}

// Minutes returns the bucket width in minutes.
func (r Resolution) Minutes() int {
	if r == Resolution1D {
		return 1440
	}
	m, err := strconv.Atoi(string(r))
	if err != nil || m <= 0 {
		return 1
	}
	return m
}

// BucketSeconds returns the bucket width in seconds.
func (r Resolution) BucketSeconds() int64 {
	return int64(r.Minutes()) * 60
}

func (r Resolution) String() string {
	return string(r)
}

// Candle is an OHLC record for one time bucket of a given resolution.
// Time is epoch seconds aligned to the bucket start.
//
// Invariants: High >= max(Open, Close), Low <= min(Open, Close), and within
// a series Time is strictly increasing with at most one candle per bucket.
type Candle struct {
	Time  int64           `json:"time"`
	Open  decimal.Decimal `json:"open"`
	High  decimal.Decimal `json:"high"`
	Low   decimal.Decimal `json:"low"`
	Close decimal.Decimal `json:"close"`
}

// ApplyMark folds a live mark price into the candle: Close takes the mark,
// High/Low widen to contain it, Open never moves.
func (c Candle) ApplyMark(mark decimal.Decimal) Candle {
	c.Close = mark
	if mark.GreaterThan(c.High) {
		c.High = mark
	}
	if mark.LessThan(c.Low) {
		c.Low = mark
	}
	return c
}
