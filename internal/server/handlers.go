package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/whalebot/gowhale/internal/domain"
	"github.com/whalebot/gowhale/pkg/sdk/api"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

type marketResponse struct {
	ID            string     `json:"id"`
	ConditionID   string     `json:"condition_id,omitempty"`
	Question      string     `json:"question"`
	Description   string     `json:"description,omitempty"`
	Slug          string     `json:"slug,omitempty"`
	Outcomes      []string   `json:"outcomes"`
	OutcomePrices []float64  `json:"outcome_prices"`
	Volume        float64    `json:"volume"`
	Liquidity     float64    `json:"liquidity"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Active        bool       `json:"active"`
}

type tradeResponse struct {
	ID           string    `json:"id"`
	MarketID     string    `json:"market_id"`
	AssetID      string    `json:"asset_id,omitempty"`
	Side         string    `json:"side"`
	Price        float64   `json:"price"`
	Size         float64   `json:"size"`
	Outcome      string    `json:"outcome,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	MakerAddress string    `json:"maker_address,omitempty"`
	TakerAddress string    `json:"taker_address,omitempty"`
}

type marketWithTradesResponse struct {
	Market marketResponse  `json:"market"`
	Trades []tradeResponse `json:"trades"`
}

func toMarketResponse(m domain.Market) marketResponse {
	return marketResponse{
		ID:            m.ID,
		ConditionID:   m.ConditionID,
		Question:      m.Question,
		Description:   m.Description,
		Slug:          m.Slug,
		Outcomes:      m.Outcomes,
		OutcomePrices: m.OutcomePrices,
		Volume:        m.Volume,
		Liquidity:     m.Liquidity,
		EndDate:       m.EndDate,
		Active:        m.Active,
	}
}

func toTradeResponse(t domain.Trade) tradeResponse {
	return tradeResponse{
		ID:           t.ID,
		MarketID:     t.MarketID,
		AssetID:      t.AssetID,
		Side:         string(t.Side),
		Price:        t.Price,
		Size:         t.Size,
		Outcome:      t.Outcome,
		Timestamp:    t.Timestamp,
		MakerAddress: t.MakerAddress,
		TakerAddress: t.TakerAddress,
	}
}

func toTradeResponses(trades []domain.Trade) []tradeResponse {
	out := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, toTradeResponse(t))
	}
	return out
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.cfg.AppName,
		"time":    time.Now().UTC(),
	})
}

func (s *Server) handleMarketsList(c *gin.Context) {
	limit, ok := s.limitParam(c)
	if !ok {
		return
	}
	markets, err := s.client.GetMarkets(c.Request.Context(), api.MarketQuery{
		Limit:         limit,
		ActiveOnly:    boolQuery(c, "active", true),
		IncludeClosed: boolQuery(c, "closed", false),
	})
	if err != nil {
		s.respondErr(c, err)
		return
	}
	out := make([]marketResponse, 0, len(markets))
	for _, m := range markets {
		out = append(out, toMarketResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"markets": out, "count": len(out)})
}

func (s *Server) handleMarketGet(c *gin.Context) {
	market, err := s.client.GetMarket(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	if market == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "market not found"})
		return
	}
	c.JSON(http.StatusOK, toMarketResponse(*market))
}

func (s *Server) handleMarketTrades(c *gin.Context) {
	limit, ok := s.limitParam(c)
	if !ok {
		return
	}
	got, err := s.client.GetMarketWithTrades(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	if got == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "market not found"})
		return
	}
	c.JSON(http.StatusOK, marketWithTradesResponse{
		Market: toMarketResponse(got.Market),
		Trades: toTradeResponses(got.Trades),
	})
}

func (s *Server) handleTradesList(c *gin.Context) {
	limit, ok := s.limitParam(c)
	if !ok {
		return
	}
	minSize, ok := s.minSizeParam(c, 0)
	if !ok {
		return
	}
	trades, err := s.client.GetRecentTrades(c.Request.Context(), limit)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	out := filterBySize(trades, minSize)
	c.JSON(http.StatusOK, gin.H{"trades": out, "count": len(out)})
}

func (s *Server) handleWhaleTrades(c *gin.Context) {
	limit, ok := s.limitParam(c)
	if !ok {
		return
	}
	minSize, ok := s.minSizeParam(c, s.cfg.WhaleThreshold)
	if !ok {
		return
	}
	trades, err := s.client.GetRecentTrades(c.Request.Context(), limit)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	out := filterBySize(trades, minSize)
	c.JSON(http.StatusOK, gin.H{"trades": out, "count": len(out), "min_size": minSize})
}

// filterBySize keeps trades with Size >= min, inclusive.
func filterBySize(trades []domain.Trade, min float64) []tradeResponse {
	out := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		if t.MeetsThreshold(min) {
			out = append(out, toTradeResponse(t))
		}
	}
	return out
}

// limitParam parses `limit` and enforces the 1..500 bound here, at the
// boundary, so the client below can trust it.
func (s *Server) limitParam(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 500"})
		return 0, false
	}
	return limit, true
}

func (s *Server) minSizeParam(c *gin.Context, fallback float64) (float64, bool) {
	raw := c.Query("min_size")
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_size must be a non-negative number"})
		return 0, false
	}
	return v, true
}

func boolQuery(c *gin.Context, key string, fallback bool) bool {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// respondErr maps client errors to status codes: gateway failures stay
// visible as 502 with the upstream status, an unusable session is 503.
func (s *Server) respondErr(c *gin.Context, err error) {
	var httpErr *api.UpstreamHTTPError
	var transportErr *api.UpstreamTransportError
	switch {
	case errors.Is(err, api.ErrClientNotInitialized):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "data client not ready"})
	case errors.As(err, &httpErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":           "upstream request failed",
			"upstream_status": httpErr.StatusCode,
		})
	case errors.As(err, &transportErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unreachable"})
	default:
		s.log.WithError(err).Error("unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
