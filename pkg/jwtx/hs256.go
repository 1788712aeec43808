package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrEmptySecret reports a signer or verifier built without key material.
	ErrEmptySecret = errors.New("jwtx: empty signing secret")

	// ErrInvalidToken reports a token that is malformed, carries a bad
	// signature, or fails claim validation (e.g. expired).
	ErrInvalidToken = errors.New("jwtx: invalid token")
)

// Signer mints signed session tokens.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a session token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256 signs and verifies tokens with a single shared secret. Each tenant
// gets its own HS256 instance, so a token minted for one tenant never
// verifies against another tenant's guard.
type HS256 struct {
	secret []byte
}

// NewHS256 builds a symmetric signer/verifier from the given secret.
func NewHS256(secret string) (*HS256, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &HS256{secret: []byte(secret)}, nil
}

// Sign turns claims into a signed compact JWT string.
func (h *HS256) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return s, nil
}

// Verify parses and validates the token string. Expiry is enforced only
// when the token carries an exp claim.
func (h *HS256) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return *claims, nil
}
