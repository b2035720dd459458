package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/scholarspace/scholarspace/api/auth" // Swagger docs
	"github.com/scholarspace/scholarspace/internal/auth/policy"
	"github.com/scholarspace/scholarspace/internal/auth/service"
	"github.com/scholarspace/scholarspace/internal/auth/store"
	"github.com/scholarspace/scholarspace/pkg/httpx"
	"github.com/scholarspace/scholarspace/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	verifier     Verifier
	policy       *policy.Engine
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	LoginService *service.LoginService
	ResetService *service.ResetService
	UserService  *service.UserService
}

// NewRouter builds a router. A nil engine uses policy.Default().
func NewRouter(
	verifier Verifier,
	engine *policy.Engine,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	production bool,
) *Router {
	if engine == nil {
		engine = policy.Default()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		policy:       engine,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Request logger -> panic recovery -> security headers -> authn -> authz.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		middleware.Recoverer,
		httpx.SecurityHeaders(production),
		Authenticate(r.verifier, r.store.Users()),
		Authorize(r.policy),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())

	r.handler = httpx.Chain(r.Mux, r.middlewares...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			ScholarSpace Authentication API
//	@version		0.1.0
//	@description	Login, password reset and account management for ScholarSpace.
//	@description
//	@description				Bearer tokens are JWTs. Send them as "Authorization: Bearer {token}".
//
//	@contact.name				ScholarSpace Team
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
	if r.handler == nil {
		httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
		return
	}
	r.handler.ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{LoginService: r.LoginService}
	register := &RegisterHandler{UserService: r.UserService}
	reset := &ResetHandler{ResetService: r.ResetService}

	r.Mux.Handle("POST /auth/login", login)
	r.Mux.Handle("POST /auth/register", register)
	r.Mux.HandleFunc("POST /auth/forgot-password", reset.HandleForgot)
	r.Mux.HandleFunc("POST /auth/reset-password", reset.HandleReset)
	r.Mux.HandleFunc("GET /auth/validate-reset-token", reset.HandleValidate)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.HandleFunc("GET /api/users/profile", h.HandleProfile)
	r.Mux.HandleFunc("POST /api/users/me/password", h.HandleChangePassword)
}

func (r *Router) registerAdmin() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.HandleFunc("POST /api/admin/users", h.HandleCreate)
	r.Mux.HandleFunc("PUT /api/admin/users/{id}/activate", h.HandleActivate)
	r.Mux.HandleFunc("PUT /api/admin/users/{id}/deactivate", h.HandleDeactivate)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.verifier))
}
