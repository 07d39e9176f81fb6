package client

// CLOB API endpoints used by the authenticated path.
const (
	endpointDeriveAPIKey = "/auth/derive-api-key"
	endpointCreateAPIKey = "/auth/api-key"
	endpointTrades       = "/data/trades"
)
