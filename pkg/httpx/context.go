package httpx

import "context"

type ctxKey string

const (
	// CtxKeyAccountID carries the authenticated account identity set by
	// AuthnMiddleware.
	CtxKeyAccountID ctxKey = "account_id"

	// CtxKeyTenant carries the tenant the presented token verified against.
	CtxKeyTenant ctxKey = "tenant"
)

// AccountIDFromContext returns the authenticated account id, or "" when the
// request did not pass through AuthnMiddleware.
func AccountIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyAccountID).(string); ok {
		return v
	}
	return ""
}
