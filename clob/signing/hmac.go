package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// BuildPolyHmacSignature computes the HMAC-SHA256 request signature used for
// L2 authentication. The message is timestamp + method + path (+ body); the
// key is the base64 API secret. Upstream sometimes hands the secret out in
// base64url form, so both alphabets are accepted, and the result is returned
// base64url-encoded as the API requires.
func BuildPolyHmacSignature(
	secret string,
	timestamp int64,
	method string,
	requestPath string,
	body *string,
) (string, error) {
	message := strconv.FormatInt(timestamp, 10) + method + requestPath
	if body != nil {
		message += *body
	}

	sanitized := strings.ReplaceAll(secret, "-", "+")
	sanitized = strings.ReplaceAll(sanitized, "_", "/")
	sanitized = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') ||
			(r >= '0' && r <= '9') || r == '+' || r == '/' || r == '=' {
			return r
		}
		return -1
	}, sanitized)

	keyData, err := base64.StdEncoding.DecodeString(sanitized)
	if err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}

	mac := hmac.New(sha256.New, keyData)
	mac.Write([]byte(message))

	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	sig = strings.ReplaceAll(sig, "+", "-")
	sig = strings.ReplaceAll(sig, "/", "_")
	return sig, nil
}
