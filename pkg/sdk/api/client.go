// Package api is the fetch client for the two upstream prediction-market
// services: the public gamma-style metadata API and the public data-api
// trade feed. It owns the session lifecycle, translates transport failures
// into a typed error taxonomy, and hands every raw element to the
// normalizer, dropping malformed ones without failing the batch.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	clobclient "github.com/whalebot/gowhale/clob/client"
	clobtypes "github.com/whalebot/gowhale/clob/types"
	"github.com/whalebot/gowhale/internal/domain"
	"github.com/whalebot/gowhale/internal/normalize"
	"github.com/whalebot/gowhale/pkg/cache"
	"github.com/whalebot/gowhale/pkg/ratelimit"
	sdkhttp "github.com/whalebot/gowhale/pkg/sdk/http"
)

var log = logrus.WithField("component", "api_client")

// Config carries everything the client needs at construction time.
type Config struct {
	GammaAPIURL string
	DataAPIURL  string
	ClobAPIURL  string

	// PrivateKey enables the authenticated CLOB path when non-empty.
	PrivateKey string
	// Credentials, when non-nil, is a pre-derived L2 triple that makes the
	// handshake unnecessary.
	Credentials *clobtypes.Credentials

	Timeout time.Duration

	// RequestsPerSecond throttles upstream calls. Zero disables throttling.
	RequestsPerSecond int
	// MarketCacheTTL controls how long single-market lookups are served from
	// memory. Zero disables the cache.
	MarketCacheTTL time.Duration
}

type sessionState int

const (
	stateUnconnected sessionState = iota
	stateConnected
	stateClosed
)

// Client is one logical session against the upstream services. The
// lifecycle is Unconnected -> Connected -> Closed; Closed is terminal.
// Concurrent reads on a Connected session are fine (the transport pools
// connections and no shared state is written during a read).
type Client struct {
	cfg Config

	mu    sync.Mutex
	state sessionState

	gamma *sdkhttp.Client
	data  *sdkhttp.Client

	markets *cache.TTL[string, *domain.Market]

	clob       *clobclient.Client
	signers    *signerPool
	authCancel context.CancelFunc
	authErr    error
}

// New builds an unconnected client. Call Connect before issuing operations.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg}
}

// Connect allocates the HTTP transports and, when a private key was
// supplied, kicks off the L2 credential handshake on the signer pool. A
// failed handshake is logged and leaves the session Connected but without
// the authenticated trade path.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateConnected:
		return nil
	case stateClosed:
		return ErrClientNotInitialized
	}

	c.gamma = sdkhttp.NewClient(c.cfg.GammaAPIURL, c.cfg.Timeout)
	c.data = sdkhttp.NewClient(c.cfg.DataAPIURL, c.cfg.Timeout)
	if rps := c.cfg.RequestsPerSecond; rps > 0 {
		// One bucket per upstream: each host enforces its own cap.
		c.gamma.WithLimiter(ratelimit.NewTokenBucket(rps, rps))
		c.data.WithLimiter(ratelimit.NewTokenBucket(rps, rps))
	}
	if c.cfg.MarketCacheTTL > 0 {
		c.markets = cache.NewTTL[string, *domain.Market](c.cfg.MarketCacheTTL)
	}
	c.state = stateConnected
	log.WithField("gamma", c.cfg.GammaAPIURL).Info("session connected")

	if c.cfg.PrivateKey == "" {
		return nil
	}

	clob, err := clobclient.New(c.cfg.ClobAPIURL, clobtypes.ChainPolygon, c.cfg.PrivateKey, c.cfg.Credentials, c.cfg.Timeout)
	if err != nil {
		// Soft-degrade: market reads never require auth.
		c.authErr = ErrAuthenticationUnavailable
		log.WithError(err).Warn("clob client unavailable, continuing read-only")
		return nil
	}
	c.clob = clob

	if clob.HasCredentials() {
		log.Info("using pre-derived clob credentials")
		return nil
	}

	// Signing is crypto-bound; keep it off the network path.
	authCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	c.authCancel = cancel
	c.signers = newSignerPool(2)
	c.signers.submit(func() {
		defer cancel()
		if _, err := clob.DeriveOrCreateAPIKey(authCtx); err != nil {
			c.mu.Lock()
			c.authErr = ErrAuthenticationUnavailable
			c.mu.Unlock()
			log.WithError(err).Warn("credential handshake failed, continuing read-only")
			return
		}
		log.Info("clob credentials derived")
	})
	return nil
}

// Close releases the transports unconditionally and abandons any pending
// handshake work. Closed is terminal: every later operation fails with
// ErrClientNotInitialized.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return nil
	}
	c.state = stateClosed
	if c.authCancel != nil {
		c.authCancel()
	}
	if c.signers != nil {
		c.signers.shutdown()
	}
	if c.markets != nil {
		c.markets.Close()
		c.markets = nil
	}
	c.gamma = nil
	c.data = nil
	c.clob = nil
	log.Info("session closed")
	return nil
}

// AuthStatus reports nil when the authenticated path is usable or was never
// requested, and ErrAuthenticationUnavailable when a supplied key could not
// complete the handshake (yet).
func (c *Client) AuthStatus() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authErr
}

func (c *Client) connected() (gamma, data *sdkhttp.Client, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateConnected {
		return nil, nil, ErrClientNotInitialized
	}
	return c.gamma, c.data, nil
}

// MarketQuery controls GetMarkets. Limit is documented as 1-500 and is
// validated by the boundary layer; this client trusts the bound.
type MarketQuery struct {
	Limit         int
	ActiveOnly    bool
	IncludeClosed bool
}

// GetMarkets fetches markets from the metadata service. Elements that fail
// normalization are logged and skipped; upstream order is preserved.
func (c *Client) GetMarkets(ctx context.Context, q MarketQuery) ([]domain.Market, error) {
	gamma, _, err := c.connected()
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	params := map[string]string{
		"limit":  strconv.Itoa(limit),
		"active": strconv.FormatBool(q.ActiveOnly),
		"closed": strconv.FormatBool(q.IncludeClosed),
	}

	resp, err := gamma.Get(ctx, "/markets", &sdkhttp.RequestOptions{Params: params}, nil)
	if err != nil {
		return nil, wrapUpstreamErr(err)
	}
	raws, err := decodeObjects(resp.Body())
	if err != nil {
		return nil, &UpstreamTransportError{Err: err}
	}

	markets := make([]domain.Market, 0, len(raws))
	for _, raw := range raws {
		m, err := normalize.Market(raw)
		if err != nil {
			log.WithError(err).Warn("skipping malformed market")
			continue
		}
		markets = append(markets, *m)
	}
	log.WithField("count", len(markets)).Debug("fetched markets")
	return markets, nil
}

// GetMarket fetches a single market. A nil market with a nil error means
// the upstream reported not-found; any other failure surfaces as a typed
// error.
func (c *Client) GetMarket(ctx context.Context, id string) (*domain.Market, error) {
	gamma, _, err := c.connected()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	mcache := c.markets
	c.mu.Unlock()
	if mcache != nil {
		if m, ok := mcache.Get(id); ok {
			return m, nil
		}
	}

	var raw map[string]any
	if _, err := gamma.Get(ctx, "/markets/"+id, nil, &raw); err != nil {
		wrapped := wrapUpstreamErr(err)
		var httpErr *UpstreamHTTPError
		if errors.As(wrapped, &httpErr) && httpErr.StatusCode == 404 {
			return nil, nil
		}
		return nil, wrapped
	}
	market, err := normalize.Market(raw)
	if err != nil {
		return nil, err
	}
	if mcache != nil {
		mcache.Set(id, market, 0)
	}
	return market, nil
}

// GetRecentTrades fetches the newest trades across all markets from the
// public trade feed, newest first per the upstream contract. No re-sorting.
func (c *Client) GetRecentTrades(ctx context.Context, limit int) ([]domain.Trade, error) {
	return c.fetchTrades(ctx, "", limit)
}

// GetMarketTrades fetches trades for one market, identified by its
// condition id. An empty result is a valid outcome ("no trade data"), never
// an error.
func (c *Client) GetMarketTrades(ctx context.Context, marketID string, limit int) ([]domain.Trade, error) {
	return c.fetchTrades(ctx, marketID, limit)
}

func (c *Client) fetchTrades(ctx context.Context, marketID string, limit int) ([]domain.Trade, error) {
	_, data, err := c.connected()
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 100
	}
	params := map[string]string{"limit": strconv.Itoa(limit)}
	if marketID != "" {
		params["market"] = marketID
	}

	resp, err := data.Get(ctx, "/trades", &sdkhttp.RequestOptions{Params: params}, nil)
	if err != nil {
		return nil, wrapUpstreamErr(err)
	}
	raws, err := decodeObjects(resp.Body())
	if err != nil {
		return nil, &UpstreamTransportError{Err: err}
	}

	trades := make([]domain.Trade, 0, len(raws))
	for _, raw := range raws {
		if len(trades) == limit {
			break
		}
		t, err := normalize.Trade(raw)
		if err != nil {
			log.WithError(err).Warn("skipping malformed trade")
			continue
		}
		trades = append(trades, *t)
	}
	log.WithFields(logrus.Fields{"count": len(trades), "market": marketID}).Debug("fetched trades")
	return trades, nil
}

// GetMarketWithTrades pairs a market with its recent trades so callers
// don't have to join the two result sets. Not-found propagates as
// (nil, nil), mirroring GetMarket.
func (c *Client) GetMarketWithTrades(ctx context.Context, id string, limit int) (*domain.MarketWithTrades, error) {
	market, err := c.GetMarket(ctx, id)
	if err != nil || market == nil {
		return nil, err
	}

	// The trade feed joins on the condition id when the market has one.
	ref := market.ConditionID
	if ref == "" {
		ref = market.ID
	}
	trades, err := c.GetMarketTrades(ctx, ref, limit)
	if err != nil {
		return nil, err
	}
	return &domain.MarketWithTrades{Market: *market, Trades: trades}, nil
}

// GetClobTrades reads trades from the authenticated low-latency CLOB feed.
// A session without usable credentials gets an empty result, not an error:
// "no data" is deliberately indistinguishable from "no entitlement" here.
func (c *Client) GetClobTrades(ctx context.Context, marketID string, limit int) ([]domain.Trade, error) {
	c.mu.Lock()
	if c.state != stateConnected {
		c.mu.Unlock()
		return nil, ErrClientNotInitialized
	}
	clob := c.clob
	c.mu.Unlock()

	if clob == nil || !clob.HasCredentials() {
		log.Debug("clob trades requested without credentials, returning empty")
		return []domain.Trade{}, nil
	}

	raws, err := clob.GetAuthedTrades(ctx, marketID, limit)
	if err != nil {
		return nil, wrapUpstreamErr(err)
	}

	trades := make([]domain.Trade, 0, len(raws))
	for _, raw := range raws {
		t, err := normalize.Trade(raw)
		if err != nil {
			log.WithError(err).Warn("skipping malformed clob trade")
			continue
		}
		trades = append(trades, *t)
	}
	return trades, nil
}

// decodeObjects accepts either an array of objects or a single object, the
// two shapes the loosely-specified upstreams actually produce.
func decodeObjects(body []byte) ([]map[string]any, error) {
	var list []map[string]any
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var single map[string]any
	if err := json.Unmarshal(body, &single); err == nil {
		return []map[string]any{single}, nil
	}
	return nil, pkgerrors.New("upstream payload is neither an object nor an array of objects")
}
