package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/campusauth/internal/auth/service"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
	"github.com/aussiebroadwan/campusauth/pkg/httpx"
	"github.com/aussiebroadwan/campusauth/pkg/jwtx"
	"github.com/aussiebroadwan/campusauth/pkg/slogx"

	_ "github.com/aussiebroadwan/campusauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits holds the three limiter profiles the routes are grouped into.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Public   httpx.RateLimitConfig
}

// DefaultRateLimits returns the built-in profiles.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Public:   httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	// AuthService must be set before ApplyRoutes.
	AuthService *service.AuthService

	// Verifier checks bearer tokens on /v1/auth/me. Nil means no signing
	// secret is configured and /me always answers 401.
	Verifier jwtx.Verifier

	// GoogleEnabled is reported by /readyz.
	GoogleEnabled bool

	Limits         RateLimits
	RequestTimeout time.Duration

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		Limits:       DefaultRateLimits(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	if r.RequestTimeout > 0 {
		r.middlewares = append(r.middlewares, httpx.Timeout(r.RequestTimeout))
	}

	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Campus Authentication Service API
//	@version		0.1.0
//	@description	Credential lifecycle for the campus platform: password login, student self-registration,
//	@description	Google sign-in and password reset. Session tokens are HS256 JWTs valid for 7 days.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/campusauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints are keyed on IP + email. Each route gets its
	// own buckets.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/forgot-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgotPassword),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
		),
	)

	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("POST /v1/auth/google",
		httpx.Chain(http.HandlerFunc(h.HandleGoogle),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("POST /v1/auth/verify-email",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("POST /v1/auth/resend-verification",
		httpx.Chain(http.HandlerFunc(h.HandleResendVerification),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)

	me := &MeHandler{AuthService: r.AuthService}
	var meChain http.Handler
	if r.Verifier != nil {
		meChain = httpx.Chain(me,
			httpx.AuthnMiddleware(r.Verifier),
			httpx.RateLimitByUser(r.Limits.Moderate),
		)
	} else {
		meChain = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeInvalidToken(w)
		})
	}
	r.Mux.Handle("GET /v1/auth/me", meChain)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signerCheck, r.GoogleEnabled),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
}

func (r *Router) signerCheck() error {
	if r.AuthService == nil || r.AuthService.Signer == nil {
		return jwtx.ErrMissingSecret
	}
	return r.AuthService.Signer.Validate()
}
