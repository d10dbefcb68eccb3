package provider

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var errMalformedToken = errors.New("malformed_jwt")

// tokenExpiry extracts the exp claim from an unverified JWT. The token is
// opaque to us apart from its expiry; verification is the provider's job.
func tokenExpiry(token string) (int64, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return 0, errMalformedToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return 0, errMalformedToken
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return 0, errMalformedToken
	}
	if claims.Exp == 0 {
		return 0, errMalformedToken
	}
	return claims.Exp, nil
}
