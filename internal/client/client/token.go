package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expirySkew refreshes slightly early so a token does not expire mid-flight.
const expirySkew = 10 * time.Second

// tokenExpired reports whether the access token is a readable JWT whose
// expiry has passed. The signature is deliberately not verified: the client
// has no key material and only uses the claim to avoid sending a request
// that is guaranteed a 401. Unreadable tokens or tokens without an expiry
// claim are sent as-is and the 401 recovery path takes over.
func tokenExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Add(expirySkew).Before(claims.ExpiresAt.Time)
}
