package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/service"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
	"github.com/aussiebroadwan/suggestbox/pkg/httpx"
	"github.com/aussiebroadwan/suggestbox/pkg/jwtx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
	"github.com/go-chi/cors"

	_ "github.com/aussiebroadwan/suggestbox/api/suggestbox" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier       jwtx.Verifier
	cookie         httpx.SessionCookie
	buildVersion   string
	startTime      time.Time
	logger         *slog.Logger
	allowedOrigins []string

	store           store.Store
	AuthService     *service.AuthService
	UserService     *service.UserService
	RecoveryService *service.RecoveryService
	MessageService  *service.MessageService
}

func NewRouter(
	verifier jwtx.Verifier,
	cookie httpx.SessionCookie,
	buildVersion string,
	allowedOrigins []string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:            http.NewServeMux(),
		verifier:       verifier,
		cookie:         cookie,
		buildVersion:   buildVersion,
		startTime:      time.Now(),
		allowedOrigins: allowedOrigins,
		store:          st,
		logger:         logger,
	}

	// The frontend is served from a different origin and authenticates with
	// a cookie, so CORS must allow credentials for the configured origins.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		cors.Handler(cors.Options{
			AllowedOrigins:   r.allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Set-Cookie"},
			AllowCredentials: true,
		}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerMessages()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
//
//	@title			SuggestBox API
//	@version		0.1.0
//	@description	Internal suggestion box: employees submit issues and ideas,
//	@description	HR and admins triage and resolve them. Authentication is a
//	@description	signed session cookie minted at login.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/suggestbox
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	authHandler := &AuthHandler{AuthService: r.AuthService, Cookie: r.cookie}
	recoveryHandler := &RecoveryHandler{RecoveryService: r.RecoveryService}

	// POST /login - strict rate limit by IP (authentication attempts)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(authHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(authHandler.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(authHandler.HandleMe),
			httpx.AuthnMiddleware(r.verifier, r.cookie),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("PUT /v1/auth/change-password",
		httpx.Chain(http.HandlerFunc(authHandler.HandleChangePassword),
			httpx.AuthnMiddleware(r.verifier, r.cookie),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	// The recovery endpoints are unauthenticated by nature; strict IP rate
	// limits are what stands between them and OTP brute force.
	r.Mux.Handle("POST /v1/auth/forgot-password",
		httpx.Chain(http.HandlerFunc(recoveryHandler.HandleForgot),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/verify-otp",
		httpx.Chain(http.HandlerFunc(recoveryHandler.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/reset-password",
		httpx.Chain(http.HandlerFunc(recoveryHandler.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	staff := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier, r.cookie),
			httpx.RequireRole("admin", "hr"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/auth/users", staff(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/users", staff(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("PUT /v1/users/{id}", staff(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("PUT /v1/users/{id}/toggle-status", staff(http.HandlerFunc(h.HandleToggleStatus)))
}

func (r *Router) registerMessages() {
	h := &MessagesHandler{MessageService: r.MessageService}

	session := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier, r.cookie),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}
	staff := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier, r.cookie),
			httpx.RequireRole("admin", "hr"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/messages", session(http.HandlerFunc(h.HandleSend)))
	r.Mux.Handle("GET /v1/messages", staff(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/messages/mine", session(http.HandlerFunc(h.HandleMine)))
	r.Mux.Handle("PUT /v1/messages/{id}/resolve", staff(http.HandlerFunc(h.HandleResolve)))
	r.Mux.Handle("GET /v1/messages/{id}/files", session(http.HandlerFunc(h.HandleDownload)))
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
