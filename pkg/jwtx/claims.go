package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session-token claims used across the service. The token
// asserts an account identity within a single tenant; the signing secret is
// tenant-specific, so the tenant claim is informational rather than a trust
// boundary.
type Claims struct {
	jwt.RegisteredClaims

	// Tenant the token was minted for ("user" or "admin").
	Tenant string `json:"tnt,omitempty"`
}

// NewSessionClaims builds claims for an account session. A zero ttl means
// the token carries no expiry, matching the service's historical behavior.
func NewSessionClaims(accountID, tenant string, ttl time.Duration, now time.Time) Claims {
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  accountID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Tenant: tenant,
	}
	if ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return c
}
