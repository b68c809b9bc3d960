// Package http wires the portal's REST endpoints to the service layer.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/supportportal/portal/internal/portal/media"
	"github.com/supportportal/portal/internal/portal/service"
	"github.com/supportportal/portal/internal/portal/store"
	"github.com/supportportal/portal/pkg/httpx"
	"github.com/supportportal/portal/pkg/jwtx"
	"github.com/supportportal/portal/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	tokenHeader  string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	UserService *service.UserService
	Images      *media.ImageStore
}

func NewRouter(
	verifier jwtx.Verifier,
	tokenHeader, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		tokenHeader:  tokenHeader,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Authentication runs globally and never rejects: it attaches a
	// principal when a valid bearer token is present and otherwise lets the
	// request through anonymously for the authorization middleware to judge.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		httpx.Authenticate(r.verifier),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{UserService: r.UserService}
	r.Mux.Handle("POST /v1/users/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP as a transport backstop to the
	// per-account attempt tracker
	loginHandler := &LoginHandler{
		AuthService: r.AuthService,
		TokenHeader: r.tokenHeader,
	}
	r.Mux.Handle("POST /v1/users/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /reset-password - strict rate limit by IP (sends email)
	resetHandler := &ResetPasswordHandler{UserService: r.UserService}
	r.Mux.Handle("GET /v1/users/reset-password/{email}",
		httpx.Chain(resetHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RequireAnyAuthority("user:read"),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/users/{username}",
		httpx.Chain(http.HandlerFunc(h.HandleFind),
			httpx.RequireAnyAuthority("user:read"),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RequireAnyAuthority("user:create"),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/users/update",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.RequireAnyAuthority("user:update"),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/users/{username}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RequireAnyAuthority("user:delete"),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	imageHandler := &ProfileImageHandler{
		UserService: r.UserService,
		Images:      r.Images,
	}

	r.Mux.Handle("POST /v1/users/profile-image",
		httpx.Chain(http.HandlerFunc(imageHandler.HandleUpload),
			httpx.RequireAuthenticated(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/users/image/{username}/{filename}",
		httpx.Chain(http.HandlerFunc(imageHandler.HandleServe),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
