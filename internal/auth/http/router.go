package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/wardenhq/warden/internal/auth/domain"
	"github.com/wardenhq/warden/internal/auth/service"
	"github.com/wardenhq/warden/internal/auth/store"
	"github.com/wardenhq/warden/pkg/httpx"
	"github.com/wardenhq/warden/pkg/jwtx"
	"github.com/wardenhq/warden/pkg/slogx"

	_ "github.com/wardenhq/warden/api/warden" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifiers    map[domain.Tenant]jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AuthService    *service.AuthService
	AccountService *service.AccountService
}

func NewRouter(
	verifiers map[domain.Tenant]jwtx.Verifier,
	buildVersion, allowedOrigin string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifiers:    verifiers,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if allowedOrigin != "" {
		r.middlewares = append(r.middlewares, httpx.CORS(allowedOrigin))
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Warden Authentication Service API
//	@version		0.1.0
//	@description	Registration, sign-in and session verification for the user and admin
//	@description	tenants, with optional email OTP as a second factor.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	TokenAuth
//	@in							header
//	@name						token
//	@description				Session token issued by signin or verify-login-otp.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	signupHandler := &SignupHandler{AuthService: r.AuthService}
	signinHandler := &SigninHandler{AuthService: r.AuthService}
	otpHandler := &VerifyOTPHandler{AuthService: r.AuthService}

	r.Mux.Handle("POST /api/v1/{tenant}/signup", signupHandler)
	r.Mux.Handle("POST /api/v1/{tenant}/signin", signinHandler)
	r.Mux.Handle("POST /api/v1/{tenant}/verify-otp", http.HandlerFunc(otpHandler.HandleRegistration))
	r.Mux.Handle("POST /api/v1/{tenant}/verify-login-otp", http.HandlerFunc(otpHandler.HandleLogin))
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{AccountService: r.AccountService}

	secured := httpx.Chain(h,
		httpx.AuthnMiddleware(r.resolveVerifier),
	)

	r.Mux.Handle("GET /api/v1/{tenant}/profile", secured)
}

func (r *Router) registerAdmin() {
	h := &UsersHandler{AccountService: r.AccountService}

	// The listing is admin-only, so the verifier is pinned rather than
	// resolved from the path.
	secured := httpx.Chain(h,
		httpx.AuthnMiddleware(func(*http.Request) (jwtx.Verifier, string, error) {
			return r.verifiers[domain.TenantAdmin], domain.TenantAdmin.String(), nil
		}),
	)

	r.Mux.Handle("GET /api/v1/admin/users", secured)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}

// resolveVerifier keys the session guard by the tenant path segment. An
// unknown segment resolves to nothing and the guard answers 404.
func (r *Router) resolveVerifier(req *http.Request) (jwtx.Verifier, string, error) {
	tenant, err := domain.ParseTenant(req.PathValue("tenant"))
	if err != nil {
		return nil, "", err
	}
	verifier, ok := r.verifiers[tenant]
	if !ok {
		return nil, "", errors.New("no verifier for tenant")
	}
	return verifier, tenant.String(), nil
}

// pathTenant parses the {tenant} segment for unauthenticated handlers.
func pathTenant(req *http.Request) (domain.Tenant, bool) {
	tenant, err := domain.ParseTenant(req.PathValue("tenant"))
	return tenant, err == nil
}
