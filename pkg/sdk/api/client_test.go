package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, gammaURL, dataURL string) *Client {
	t.Helper()
	c := New(Config{
		GammaAPIURL: gammaURL,
		DataAPIURL:  dataURL,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func jsonHandler(t *testing.T, status int, payload any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}
}

func TestGetMarketsSkipsMalformedElements(t *testing.T) {
	payload := []map[string]any{
		{
			"id":            "mk-1",
			"question":      "First?",
			"outcomePrices": `["0.65", "0.35"]`,
		},
		{
			// No id at all: normalization must reject this one.
			"question": "Broken?",
		},
		{
			"id":            "mk-3",
			"question":      "Third?",
			"outcomePrices": []any{0.10, 0.90},
		},
	}
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, payload))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	markets, err := c.GetMarkets(context.Background(), MarketQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "mk-1", markets[0].ID)
	assert.Equal(t, "mk-3", markets[1].ID)
	assert.Equal(t, []float64{0.65, 0.35}, markets[0].OutcomePrices)
}

func TestGetMarketsQueryParams(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"limit":  r.URL.Query().Get("limit"),
			"active": r.URL.Query().Get("active"),
			"closed": r.URL.Query().Get("closed"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.GetMarkets(context.Background(), MarketQuery{Limit: 25, ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "25", gotQuery["limit"])
	assert.Equal(t, "true", gotQuery["active"])
	assert.Equal(t, "false", gotQuery["closed"])
}

func TestGetMarketNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	market, err := c.GetMarket(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, market)
}

func TestGetMarketServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.GetMarket(context.Background(), "mk-1")
	var httpErr *UpstreamHTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listening anymore

	c := newTestClient(t, url, url)
	_, err := c.GetRecentTrades(context.Background(), 10)
	var transportErr *UpstreamTransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestClosedSessionRejectsEverything(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, []map[string]any{}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	require.NoError(t, c.Close())

	ctx := context.Background()
	_, err := c.GetMarkets(ctx, MarketQuery{})
	assert.ErrorIs(t, err, ErrClientNotInitialized)
	_, err = c.GetMarket(ctx, "mk-1")
	assert.ErrorIs(t, err, ErrClientNotInitialized)
	_, err = c.GetRecentTrades(ctx, 10)
	assert.ErrorIs(t, err, ErrClientNotInitialized)
	_, err = c.GetMarketTrades(ctx, "cond-1", 10)
	assert.ErrorIs(t, err, ErrClientNotInitialized)
	_, err = c.GetMarketWithTrades(ctx, "mk-1", 10)
	assert.ErrorIs(t, err, ErrClientNotInitialized)
	_, err = c.GetClobTrades(ctx, "cond-1", 10)
	assert.ErrorIs(t, err, ErrClientNotInitialized)

	// Closed is terminal: reconnecting is not a thing.
	assert.ErrorIs(t, c.Connect(ctx), ErrClientNotInitialized)
}

func TestGetMarketTradesEmptyIsValid(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, []map[string]any{}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	trades, err := c.GetMarketTrades(context.Background(), "cond-1", 10)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestGetRecentTradesNormalizes(t *testing.T) {
	payload := []map[string]any{
		{
			"id":        "tr-1",
			"market":    "cond-1",
			"side":      "buy",
			"price":     "0.62",
			"size":      "1200",
			"timestamp": float64(1700000000),
		},
		{
			"id":     "tr-2",
			"market": "cond-1",
			"side":   "SELL",
			"price":  2.5, // out of range, must be skipped
			"size":   10,
		},
	}
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, payload))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	trades, err := c.GetRecentTrades(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "tr-1", trades[0].ID)
	assert.True(t, trades[0].IsWhale())
}

func TestGetMarketWithTradesJoinsOnConditionID(t *testing.T) {
	var tradeQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/markets/mk-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"mk-1","conditionId":"0xcond","question":"Q?"}`))
	})
	mux.HandleFunc("/trades", func(w http.ResponseWriter, r *http.Request) {
		tradeQuery = r.URL.Query().Get("market")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"tr-1","market":"0xcond","side":"BUY","price":0.5,"size":100}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	got, err := c.GetMarketWithTrades(context.Background(), "mk-1", 10)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0xcond", tradeQuery)
	assert.Equal(t, "mk-1", got.Market.ID)
	require.Len(t, got.Trades, 1)
}

func TestGetClobTradesWithoutCredentials(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, []map[string]any{}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	trades, err := c.GetClobTrades(context.Background(), "cond-1", 10)
	require.NoError(t, err)
	assert.NotNil(t, trades)
	assert.Empty(t, trades)
}

func TestSingleObjectPayloadDecodes(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{
		"id": "mk-solo", "question": "Only one?",
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	markets, err := c.GetMarkets(context.Background(), MarketQuery{})
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "mk-solo", markets[0].ID)
}
