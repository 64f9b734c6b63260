package client

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlexZinkM/nilz-wallet/nillion"
)

const tokenTTL = time.Minute

var tokenHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"ES256K","typ":"JWT"}`))

// tokenClaims are the claims of a self-issued invocation token
type tokenClaims struct {
	Issuer   string `json:"iss"`
	Audience string `json:"aud"`
	IssuedAt int64  `json:"iat"`
	Expires  int64  `json:"exp"`
}

// signToken issues a short-lived ES256K token for audience, signed by kp
func signToken(kp *nillion.Keypair, audience string, now time.Time) (string, error) {
	claims, err := json.Marshal(tokenClaims{
		Issuer:   kp.DID(),
		Audience: audience,
		IssuedAt: now.Unix(),
		Expires:  now.Add(tokenTTL).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token claims: %w", err)
	}

	signingInput := tokenHeader + "." + base64.RawURLEncoding.EncodeToString(claims)
	digest := sha256.Sum256([]byte(signingInput))
	sig := kp.SignCompact(digest[:])

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}
