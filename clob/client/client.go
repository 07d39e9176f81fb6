package client

import (
	"context"
	"crypto/ecdsa"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/whalebot/gowhale/clob/signing"
	"github.com/whalebot/gowhale/clob/types"
	sdkhttp "github.com/whalebot/gowhale/pkg/sdk/http"
)

// Client is the authenticated CLOB path: it derives L2 credentials from a
// wallet private key and issues HMAC-signed reads. It never places orders.
type Client struct {
	host       string
	chainID    types.Chain
	privateKey *ecdsa.PrivateKey
	address    common.Address
	http       *sdkhttp.Client

	mu    sync.RWMutex
	creds *types.Credentials
}

// New creates a client for the given CLOB host. privateKeyHex may carry an
// optional 0x prefix. creds, when non-nil, is a pre-derived credential
// triple that skips the handshake entirely.
func New(host string, chainID types.Chain, privateKeyHex string, creds *types.Credentials, timeout time.Duration) (*Client, error) {
	keyHex := strings.TrimSpace(privateKeyHex)
	keyHex = strings.TrimPrefix(keyHex, "0x")
	if keyHex == "" {
		return nil, errors.New("private key is empty")
	}

	privateKey, err := signing.PrivateKeyFromHex(keyHex)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}

	return &Client{
		host:       strings.TrimSuffix(host, "/"),
		chainID:    chainID,
		privateKey: privateKey,
		address:    signing.GetAddressFromPrivateKey(privateKey),
		http:       sdkhttp.NewClient(host, timeout),
		creds:      creds,
	}, nil
}

// Address is the wallet address derived from the private key.
func (c *Client) Address() string {
	return c.address.Hex()
}

// Credentials returns the currently held L2 triple, or nil before the
// handshake completes.
func (c *Client) Credentials() *types.Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// HasCredentials reports whether the L2 triple is available.
func (c *Client) HasCredentials() bool {
	return c.Credentials() != nil
}

// DeriveOrCreateAPIKey performs the L1 handshake: it first tries to derive
// an existing API key and, when the account has none (400), creates one.
// The resulting triple is retained on the client.
func (c *Client) DeriveOrCreateAPIKey(ctx context.Context) (*types.Credentials, error) {
	if existing := c.Credentials(); existing != nil {
		return existing, nil
	}

	headers, err := signing.CreateL1Headers(c.privateKey, c.chainID, 0, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create L1 headers")
	}
	opt := &sdkhttp.RequestOptions{Headers: headers.Map()}

	var raw types.APIKeyResponse
	_, err = c.http.Get(ctx, endpointDeriveAPIKey, opt, &raw)
	if err != nil {
		var statusErr *sdkhttp.StatusError
		if !stderrors.As(err, &statusErr) || statusErr.Status != http.StatusBadRequest {
			return nil, errors.Wrap(err, "derive api key")
		}
		// 400 means the account has no key yet; create one.
		raw = types.APIKeyResponse{}
		if _, err := c.http.Do(ctx, http.MethodPost, endpointCreateAPIKey, opt, &raw); err != nil {
			return nil, errors.Wrap(err, "create api key")
		}
	}

	creds := &types.Credentials{
		Key:        raw.APIKey,
		Secret:     raw.Secret,
		Passphrase: raw.Passphrase,
	}

	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()
	return creds, nil
}

// GetAuthedTrades fetches trades from the signed CLOB /data/trades endpoint,
// optionally scoped to one market (condition id). The raw JSON objects are
// returned; normalization is the caller's concern. Without credentials the
// result is nil with ErrNoCredentials.
func (c *Client) GetAuthedTrades(ctx context.Context, market string, limit int) ([]map[string]any, error) {
	creds := c.Credentials()
	if creds == nil {
		return nil, ErrNoCredentials
	}

	l2, err := signing.CreateL2Headers(c.Address(), creds, types.L2HeaderArgs{
		Method:      http.MethodGet,
		RequestPath: endpointTrades,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create L2 headers")
	}

	params := map[string]string{}
	if market != "" {
		params["market"] = market
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var raw []map[string]any
	if _, err := c.http.Get(ctx, endpointTrades, &sdkhttp.RequestOptions{
		Headers: l2.Map(),
		Params:  params,
	}, &raw); err != nil {
		return nil, errors.Wrap(err, "fetch clob trades")
	}
	return raw, nil
}

// ErrNoCredentials marks an authenticated call attempted before the L2
// handshake produced a credential triple.
var ErrNoCredentials = stderrors.New("clob: no api credentials available")
