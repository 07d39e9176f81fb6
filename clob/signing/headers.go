package signing

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"
	"time"

	"github.com/whalebot/gowhale/clob/types"
)

// CreateL1Headers builds the EIP-712-signed headers used by the credential
// derivation endpoints. A nil timestamp means "now".
func CreateL1Headers(
	privateKey *ecdsa.PrivateKey,
	chainID types.Chain,
	nonce int64,
	timestamp *int64,
) (*types.L1Headers, error) {
	ts := time.Now().Unix()
	if timestamp != nil {
		ts = *timestamp
	}

	sig, err := BuildClobEip712Signature(privateKey, chainID, ts, nonce)
	if err != nil {
		return nil, fmt.Errorf("build EIP-712 signature: %w", err)
	}

	return &types.L1Headers{
		PolyAddress:   GetAddressFromPrivateKey(privateKey).Hex(),
		PolySignature: sig,
		PolyTimestamp: strconv.FormatInt(ts, 10),
		PolyNonce:     strconv.FormatInt(nonce, 10),
	}, nil
}

// CreateL2Headers builds HMAC-signed headers from derived credentials for
// one specific request.
func CreateL2Headers(
	address string,
	creds *types.Credentials,
	args types.L2HeaderArgs,
	timestamp *int64,
) (*types.L2Headers, error) {
	ts := time.Now().Unix()
	if timestamp != nil {
		ts = *timestamp
	}

	sig, err := BuildPolyHmacSignature(creds.Secret, ts, args.Method, args.RequestPath, args.Body)
	if err != nil {
		return nil, fmt.Errorf("build HMAC signature: %w", err)
	}

	return &types.L2Headers{
		PolyAddress:    address,
		PolySignature:  sig,
		PolyTimestamp:  strconv.FormatInt(ts, 10),
		PolyAPIKey:     creds.Key,
		PolyPassphrase: creds.Passphrase,
	}, nil
}
