package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt reads the exp claim of a bearer token without verifying its
// signature; only the server can do that. Opaque tokens report false.
func ExpiresAt(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// expired reports whether token carries an exp claim at or before now.
func expired(token string, now time.Time) bool {
	exp, ok := ExpiresAt(token)
	return ok && !now.Before(exp)
}
