package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired inspects the access token's exp claim without verifying the
// signature; the client never holds the signing key. Tokens that are not
// JWTs, or carry no expiry, are treated as opaque and assumed live. The
// backend rejects them with a 401 if they are not.
func tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
