package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whalebot/gowhale/internal/domain"
	"github.com/whalebot/gowhale/pkg/sdk/api"
)

type stubClient struct {
	markets []domain.Market
	market  *domain.Market
	trades  []domain.Trade
	err     error

	gotQuery api.MarketQuery
	gotLimit int
}

func (s *stubClient) GetMarkets(_ context.Context, q api.MarketQuery) ([]domain.Market, error) {
	s.gotQuery = q
	return s.markets, s.err
}

func (s *stubClient) GetMarket(_ context.Context, id string) (*domain.Market, error) {
	return s.market, s.err
}

func (s *stubClient) GetRecentTrades(_ context.Context, limit int) ([]domain.Trade, error) {
	s.gotLimit = limit
	return s.trades, s.err
}

func (s *stubClient) GetMarketTrades(_ context.Context, marketID string, limit int) ([]domain.Trade, error) {
	return s.trades, s.err
}

func (s *stubClient) GetMarketWithTrades(_ context.Context, id string, limit int) (*domain.MarketWithTrades, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.market == nil {
		return nil, nil
	}
	return &domain.MarketWithTrades{Market: *s.market, Trades: s.trades}, nil
}

func doRequest(t *testing.T, stub *stubClient, path string) *httptest.ResponseRecorder {
	t.Helper()
	srv := New(Config{AppName: "whale-watch", WhaleThreshold: 500}, stub)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func testTrade(id string, size float64) domain.Trade {
	return domain.Trade{
		ID:        id,
		MarketID:  "cond-1",
		Side:      domain.SideBuy,
		Price:     0.5,
		Size:      size,
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, &stubClient{}, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMarketsList(t *testing.T) {
	stub := &stubClient{markets: []domain.Market{{ID: "mk-1", Question: "Q?"}}}
	rec := doRequest(t, stub, "/markets?limit=50&active=true")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, 50, stub.gotQuery.Limit)
	assert.True(t, stub.gotQuery.ActiveOnly)
}

func TestMarketsListLimitValidation(t *testing.T) {
	for _, bad := range []string{"0", "501", "-3", "abc"} {
		rec := doRequest(t, &stubClient{}, "/markets?limit="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", bad)
	}
}

func TestMarketGetNotFound(t *testing.T) {
	rec := doRequest(t, &stubClient{}, "/markets/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarketGetFound(t *testing.T) {
	stub := &stubClient{market: &domain.Market{ID: "mk-1", Question: "Q?", OutcomePrices: []float64{0.6, 0.4}}}
	rec := doRequest(t, stub, "/markets/mk-1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "mk-1", body["id"])
}

func TestMarketTrades(t *testing.T) {
	stub := &stubClient{
		market: &domain.Market{ID: "mk-1"},
		trades: []domain.Trade{testTrade("tr-1", 100)},
	}
	rec := doRequest(t, stub, "/markets/mk-1/trades")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Contains(t, body, "market")
	require.Contains(t, body, "trades")
}

func TestTradesMinSizeFilter(t *testing.T) {
	stub := &stubClient{trades: []domain.Trade{
		testTrade("small", 100),
		testTrade("exact", 250),
		testTrade("big", 900),
	}}
	rec := doRequest(t, stub, "/trades?min_size=250")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	// Inclusive bound: the trade sized exactly at min_size stays.
	assert.EqualValues(t, 2, body["count"])
}

func TestWhaleTradesDefaultThreshold(t *testing.T) {
	stub := &stubClient{trades: []domain.Trade{
		testTrade("minnow", 499.99),
		testTrade("boundary", 500),
		testTrade("whale", 12000),
	}}
	rec := doRequest(t, stub, "/trades/whales")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["count"])
	assert.EqualValues(t, 500, body["min_size"])
}

func TestWhaleTradesCustomThreshold(t *testing.T) {
	stub := &stubClient{trades: []domain.Trade{
		testTrade("mid", 1000),
		testTrade("big", 5000),
	}}
	rec := doRequest(t, stub, "/trades/whales?min_size=2000")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["count"])
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not ready", api.ErrClientNotInitialized, http.StatusServiceUnavailable},
		{"upstream 500", &api.UpstreamHTTPError{StatusCode: 500}, http.StatusBadGateway},
		{"unreachable", &api.UpstreamTransportError{Err: context.DeadlineExceeded}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, &stubClient{err: tc.err}, "/markets")
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
