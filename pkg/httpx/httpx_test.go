package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wardenhq/warden/pkg/jwtx"
)

func TestChainOrdering(t *testing.T) {
	t.Parallel()

	var order []string
	record := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), record("first"), record("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("sets headers for the allowed origin", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")

		CORS("http://localhost:5173")(next).ServeHTTP(rr, req)

		require.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
		require.Equal(t, http.StatusTeapot, rr.Code)
	})

	t.Run("ignores other origins", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example")

		CORS("http://localhost:5173")(next).ServeHTTP(rr, req)

		require.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("short-circuits preflight", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")

		CORS("http://localhost:5173")(next).ServeHTTP(rr, req)

		require.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestAuthnMiddleware(t *testing.T) {
	t.Parallel()

	keys, err := jwtx.NewHS256("test-secret")
	require.NoError(t, err)

	resolve := func(r *http.Request) (jwtx.Verifier, string, error) {
		return keys, "user", nil
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(AccountIDFromContext(r.Context())))
	})
	guard := AuthnMiddleware(resolve)(next)

	t.Run("rejects missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		guard.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.JSONEq(t, `{"message":"Authentication failed"}`, rr.Body.String())
	})

	t.Run("rejects bad token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TokenHeader, "not-a-jwt")
		guard.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("injects account id on success", func(t *testing.T) {
		token, err := keys.Sign(jwtx.NewSessionClaims("acct-42", "user", 0, time.Now()))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TokenHeader, token)
		guard.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "acct-42", rr.Body.String())
	})
}
