package types

// Chain identifies the blockchain network behind the CLOB.
type Chain int

const (
	ChainPolygon Chain = 137
	ChainAmoy    Chain = 80002
)

// Credentials is the L2 authentication triple derived from a wallet's
// private key. It is held only by the authenticated client path and must
// never be logged or serialized back to callers.
type Credentials struct {
	Key        string
	Secret     string
	Passphrase string
}

// APIKeyResponse is the raw shape returned by the auth endpoints.
type APIKeyResponse struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// L1Headers carry an EIP-712 wallet signature proving key ownership.
type L1Headers struct {
	PolyAddress   string
	PolySignature string
	PolyTimestamp string
	PolyNonce     string
}

// L2Headers carry an HMAC request signature built from derived credentials.
type L2Headers struct {
	PolyAddress    string
	PolySignature  string
	PolyTimestamp  string
	PolyAPIKey     string
	PolyPassphrase string
}

// L2HeaderArgs describes the request being signed.
type L2HeaderArgs struct {
	Method      string
	RequestPath string
	Body        *string
}

// Map renders the headers for injection into an HTTP request.
func (h *L1Headers) Map() map[string]string {
	return map[string]string{
		"POLY_ADDRESS":   h.PolyAddress,
		"POLY_SIGNATURE": h.PolySignature,
		"POLY_TIMESTAMP": h.PolyTimestamp,
		"POLY_NONCE":     h.PolyNonce,
	}
}

// Map renders the headers for injection into an HTTP request.
func (h *L2Headers) Map() map[string]string {
	return map[string]string{
		"POLY_ADDRESS":    h.PolyAddress,
		"POLY_SIGNATURE":  h.PolySignature,
		"POLY_TIMESTAMP":  h.PolyTimestamp,
		"POLY_API_KEY":    h.PolyAPIKey,
		"POLY_PASSPHRASE": h.PolyPassphrase,
	}
}
