package orderly

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyhieublock/tradding/internal/domain"
	"github.com/huyhieublock/tradding/internal/infra"
)

func newTestClient(srvURL string) *Client {
	cfg := &infra.Config{}
	cfg.API.Orderly.RestURL = srvURL
	return NewClient(cfg)
}

func TestClient_FetchBars(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"symbol":     r.URL.Query().Get("symbol"),
			"resolution": r.URL.Query().Get("resolution"),
			"from":       r.URL.Query().Get("from"),
			"to":         r.URL.Query().Get("to"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"s":"ok","t":[100,160],"o":[1.5,2],"h":[2,3],"l":[1,1.8],"c":[1.9,2.5]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.FetchBars(context.Background(), "PERP_ETH_USDC", domain.Resolution1m, 100, 160)
	require.NoError(t, err)

	assert.Equal(t, "PERP_ETH_USDC", gotQuery["symbol"])
	assert.Equal(t, "1", gotQuery["resolution"])
	assert.Equal(t, "100", gotQuery["from"])
	assert.Equal(t, "160", gotQuery["to"])

	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Times, 2)
	assert.Equal(t, int64(100), resp.Times[0])
	assert.Equal(t, "1.5", resp.Opens[0].String())
	assert.Equal(t, "2.5", resp.Closes[1].String())
}

func TestClient_FetchBarsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"no_data"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.FetchBars(context.Background(), "PERP_BTC_USDC", domain.Resolution1h, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, "no_data", resp.Status)
	assert.Empty(t, resp.Times)
}

func TestClient_FetchBarsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchBars(context.Background(), "PERP_ETH_USDC", domain.Resolution15m, 0, 100)
	assert.Error(t, err)
}

func TestClient_FetchBarsBadColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// "h" holds a non-numeric entry; the whole response must fail.
		w.Write([]byte(`{"s":"ok","t":[100],"o":[1],"h":["oops"],"l":[1],"c":[1]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchBars(context.Background(), "PERP_ETH_USDC", domain.Resolution15m, 0, 100)
	assert.Error(t, err)
}

func TestClient_FetchBarsContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(srv.URL)
	_, err := c.FetchBars(ctx, "PERP_ETH_USDC", domain.Resolution15m, 0, 100)
	assert.Error(t, err)
}
