package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/syedsanaulhaq/scl/api/auth" // Swagger docs
	"github.com/syedsanaulhaq/scl/internal/auth/domain"
	"github.com/syedsanaulhaq/scl/internal/auth/service"
	"github.com/syedsanaulhaq/scl/internal/auth/store"
	"github.com/syedsanaulhaq/scl/pkg/httpx"
	"github.com/syedsanaulhaq/scl/pkg/jwtx"
	"github.com/syedsanaulhaq/scl/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         chi.Router
	middlewares []httpx.Middleware

	gate         *httpx.Gate
	metrics      *Metrics
	limits       httpx.RateLimitProfiles
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService *service.AuthService
	UserService *service.UserService
}

// NewRouter wires the gate and metrics. Services are set on the returned
// Router before ApplyRoutes is called.
func NewRouter(
	verifier jwtx.Verifier,
	limits httpx.RateLimitProfiles,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	metrics := NewMetrics()
	r := &Router{
		Mux:          chi.NewRouter(),
		gate:         httpx.NewGate(verifier, metrics.ObserveGate),
		metrics:      metrics,
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		middleware.Recoverer,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerDashboard()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Get("/swagger/*", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SCL Identity and Access API
//	@version		0.1.0
//	@description	Account registration, login and role-gated access for the SCL education platform.
//	@description
//	@description				Access and refresh tokens are HS256 JWTs signed with separate secrets.
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
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Metrics: r.metrics}
	p := &ProfileHandler{AuthService: r.AuthService}

	// Credential endpoints share one strict bucket keyed by IP and email
	// so a single address cannot spray one account.
	strict := httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email")

	r.Mux.Route("/v1/auth", func(ar chi.Router) {
		ar.With(strict).Post("/register", h.Register)
		ar.With(strict).Post("/login", h.Login)
		ar.With(httpx.RateLimitByIP(r.limits.Strict)).Post("/refresh", h.Refresh)

		authed := ar.With(r.gate.Require(), httpx.RateLimitByUser(r.limits.Moderate))
		authed.Post("/logout", h.Logout)
		authed.Get("/profile", p.Get)
		authed.Patch("/profile", p.Update)
	})
}

func (r *Router) registerDashboard() {
	r.Mux.With(r.gate.Optional(), httpx.RateLimitByIP(r.limits.Lenient)).
		Get("/v1/dashboard", DashboardHandler)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Route("/v1/users", func(ur chi.Router) {
		ur.Use(r.gate.Require(domain.RoleAdmin.String()), httpx.RateLimitByUser(r.limits.Moderate))

		ur.Get("/", h.List)
		ur.Post("/", h.Create)
		ur.Get("/{id}", h.Get)
		ur.Patch("/{id}", h.Update)
		ur.Delete("/{id}", h.Deactivate)
	})
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently.
	public := httpx.RateLimitByIP(r.limits.Public)

	r.Mux.With(public).Get("/livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.With(public).Get("/readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("/metrics", r.metrics.Handler())
}
