package httpx

import (
	"context"
	"net/http"

	"github.com/wardenhq/warden/pkg/jwtx"
	"github.com/wardenhq/warden/pkg/slogx"
)

// TokenHeader is the request header carrying the session token. The API has
// always used a bare "token" header rather than the Authorization scheme,
// and existing clients depend on it.
const TokenHeader = "token"

// VerifierResolver picks the verifier for a request, typically keyed by the
// tenant in the route. Returning an error rejects the request with 404.
type VerifierResolver func(r *http.Request) (jwtx.Verifier, string, error)

// AuthnMiddleware is the session guard. It resolves the tenant-scoped
// verifier, validates the token header, and injects the account identity
// into the request context.
//
// The guard deliberately does not re-check the account's verified or 2FA
// state; those are enforced when the session is issued, so a token minted
// for a since-unverified account remains accepted.
func AuthnMiddleware(resolve VerifierResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			verifier, tenant, err := resolve(r)
			if err != nil {
				WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
				return
			}

			raw := r.Header.Get(TokenHeader)
			if raw == "" {
				WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Authentication failed"})
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				log.Warn("session token rejected", "tenant", tenant, "err", err)
				WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Authentication failed"})
				return
			}

			ctx = context.WithValue(ctx, CtxKeyAccountID, claims.Subject)
			ctx = context.WithValue(ctx, CtxKeyTenant, tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
