// Package server is the HTTP boundary: gin routes over the fetch client,
// request validation, and the mapping from client errors to status codes.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/whalebot/gowhale/internal/domain"
	"github.com/whalebot/gowhale/pkg/logger"
	"github.com/whalebot/gowhale/pkg/sdk/api"
)

// MarketClient is the slice of the fetch client the routes need. Tests
// substitute a stub.
type MarketClient interface {
	GetMarkets(ctx context.Context, q api.MarketQuery) ([]domain.Market, error)
	GetMarket(ctx context.Context, id string) (*domain.Market, error)
	GetRecentTrades(ctx context.Context, limit int) ([]domain.Trade, error)
	GetMarketTrades(ctx context.Context, marketID string, limit int) ([]domain.Trade, error)
	GetMarketWithTrades(ctx context.Context, id string, limit int) (*domain.MarketWithTrades, error)
}

type Config struct {
	AppName string
	Debug   bool
	// WhaleThreshold is the default min_size for /trades/whales.
	WhaleThreshold float64
}

type Server struct {
	cfg    Config
	client MarketClient
	log    *logrus.Entry
}

func New(cfg Config, client MarketClient) *Server {
	if cfg.WhaleThreshold <= 0 {
		cfg.WhaleThreshold = domain.DefaultWhaleThreshold
	}
	return &Server{cfg: cfg, client: client, log: logger.WithComponent("server")}
}

func (s *Server) Router() http.Handler {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(s.log))

	r.GET("/health", s.handleHealth)
	r.GET("/markets", s.handleMarketsList)
	r.GET("/markets/:id", s.handleMarketGet)
	r.GET("/markets/:id/trades", s.handleMarketTrades)
	r.GET("/trades", s.handleTradesList)
	r.GET("/trades/whales", s.handleWhaleTrades)

	return r
}
