package api

import (
	"errors"
	"fmt"
	"strings"

	sdkhttp "github.com/whalebot/gowhale/pkg/sdk/http"
)

// ErrClientNotInitialized marks an operation attempted outside the Connected
// state (before Connect or after Close).
var ErrClientNotInitialized = errors.New("api: client not initialized, session is not connected")

// ErrAuthenticationUnavailable marks a session that was given a private key
// but could not complete the credential handshake. The session stays usable
// for market reads; only the authenticated trade path is degraded.
var ErrAuthenticationUnavailable = errors.New("api: authentication unavailable, session is read-only")

// UpstreamHTTPError is a 4xx/5xx response from an upstream service.
type UpstreamHTTPError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamHTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("upstream http error %d: %s", e.StatusCode, body)
}

// UpstreamTransportError is a failure before any HTTP response arrived:
// DNS, connect, TLS or timeout. Plausibly transient, unlike a 4xx.
type UpstreamTransportError struct {
	Err error
}

func (e *UpstreamTransportError) Error() string {
	return fmt.Sprintf("upstream transport error: %v", e.Err)
}

func (e *UpstreamTransportError) Unwrap() error { return e.Err }

// wrapUpstreamErr folds transport-layer errors into the client's taxonomy.
func wrapUpstreamErr(err error) error {
	if err == nil {
		return nil
	}
	var statusErr *sdkhttp.StatusError
	if errors.As(err, &statusErr) {
		return &UpstreamHTTPError{StatusCode: statusErr.Status, Body: statusErr.Body}
	}
	return &UpstreamTransportError{Err: err}
}
