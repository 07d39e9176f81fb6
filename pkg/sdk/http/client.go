package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/whalebot/gowhale/pkg/ratelimit"
)

// Client is a thin wrapper around resty scoped to one upstream host.
// resty picks up proxy configuration from the environment on its own
// (HTTP_PROXY, HTTPS_PROXY and friends).
type Client struct {
	client  *resty.Client
	limiter ratelimit.Limiter
}

// NewClient creates a client rooted at host with a per-request timeout.
func NewClient(host string, timeout time.Duration) *Client {
	host = strings.TrimSuffix(host, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout)

	return &Client{client: client}
}

// WithLimiter throttles outgoing requests through l. Returns the client for
// chaining at construction.
func (c *Client) WithLimiter(l ratelimit.Limiter) *Client {
	c.limiter = l
	return c
}

// RequestOptions carries per-request headers, query params and body.
type RequestOptions struct {
	Headers map[string]string
	Params  map[string]string
	Data    any
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", "gowhale/0.1")
	return r
}

// Get issues a GET against endpoint and decodes a 2xx JSON response into out.
// Non-2xx responses come back as a *StatusError; anything before a response
// (DNS, connect, timeout) comes back as a plain error.
func (c *Client) Get(ctx context.Context, endpoint string, opt *RequestOptions, out any) (*resty.Response, error) {
	return c.Do(ctx, http.MethodGet, endpoint, opt, out)
}

// Do issues a request. out may be nil when the caller only needs the
// response body or status.
func (c *Client) Do(ctx context.Context, method, endpoint string, opt *RequestOptions, out any) (*resty.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrapf(err, "rate limit wait for %s %s", method, endpoint)
		}
	}
	rc := c.newRequest(ctx)
	if opt != nil {
		for k, v := range opt.Headers {
			rc.SetHeader(k, v)
		}
		if len(opt.Params) > 0 {
			rc.SetQueryParams(opt.Params)
		}
		if opt.Data != nil {
			rc.SetHeader("Content-Type", "application/json")
			rc.SetBody(opt.Data)
		}
	}

	var resp *resty.Response
	var err error
	switch strings.ToUpper(method) {
	case http.MethodGet:
		resp, err = rc.Get(endpoint)
	case http.MethodPost:
		resp, err = rc.Post(endpoint)
	case http.MethodPut:
		resp, err = rc.Put(endpoint)
	case http.MethodDelete:
		resp, err = rc.Delete(endpoint)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, endpoint)
	}
	if !resp.IsSuccess() {
		return resp, &StatusError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return resp, errors.Wrapf(err, "decode %s %s response", method, endpoint)
		}
	}
	return resp, nil
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, body)
}
