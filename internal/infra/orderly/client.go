package orderly

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/huyhieublock/tradding/internal/chart"
	"github.com/huyhieublock/tradding/internal/domain"
	"github.com/huyhieublock/tradding/internal/infra"
)

const historyPath = "/tv/history"

// Client is the Orderly REST API client (Boundary Layer). It implements
// chart.BarFetcher for the history loader.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Orderly REST client.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		baseURL: cfg.API.Orderly.RestURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		logger: slog.Default().With("module", "orderly_client"),
	}
}

// FetchBars requests the historical bar range for symbol/resolution.
// All times are epoch seconds. The raw parallel arrays are handed to the
// chart layer as-is: zipping, sorting and deduplication are its job.
func (c *Client) FetchBars(ctx context.Context, symbol string, resolution domain.Resolution, from, to int64) (chart.HistoryResponse, error) {
	u, err := url.Parse(c.baseURL + historyPath)
	if err != nil {
		return chart.HistoryResponse{}, fmt.Errorf("orderly: parse url: %w", err)
	}

	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("resolution", resolution.String())
	q.Set("from", strconv.FormatInt(from, 10))
	q.Set("to", strconv.FormatInt(to, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return chart.HistoryResponse{}, fmt.Errorf("orderly: build request: %w", err)
	}
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chart.HistoryResponse{}, fmt.Errorf("orderly: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return chart.HistoryResponse{}, fmt.Errorf("orderly: unexpected status %s", resp.Status)
	}

	var raw tvHistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return chart.HistoryResponse{}, fmt.Errorf("orderly: decode response: %w", err)
	}

	if raw.ErrMsg != "" {
		c.logger.Warn("History endpoint reported an error",
			slog.String("symbol", symbol),
			slog.String("errmsg", raw.ErrMsg))
	}

	return convertHistory(raw)
}

// convertHistory parses the wire numbers into decimals. A non-numeric
// price anywhere in the payload fails the whole response: partial OHLC
// columns cannot be zipped meaningfully.
func convertHistory(raw tvHistoryResponse) (chart.HistoryResponse, error) {
	out := chart.HistoryResponse{
		Status: raw.Status,
		Times:  raw.Times,
	}

	var err error
	if out.Opens, err = toDecimals(raw.Opens); err != nil {
		return chart.HistoryResponse{}, fmt.Errorf("orderly: open column: %w", err)
	}
	if out.Highs, err = toDecimals(raw.Highs); err != nil {
		return chart.HistoryResponse{}, fmt.Errorf("orderly: high column: %w", err)
	}
	if out.Lows, err = toDecimals(raw.Lows); err != nil {
		return chart.HistoryResponse{}, fmt.Errorf("orderly: low column: %w", err)
	}
	if out.Closes, err = toDecimals(raw.Closes); err != nil {
		return chart.HistoryResponse{}, fmt.Errorf("orderly: close column: %w", err)
	}
	return out, nil
}

func toDecimals(nums []json.Number) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(nums))
	for i, n := range nums {
		d, err := toDecimal(n)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}
