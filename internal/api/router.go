package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eventloka/server/internal/api/handlers"
	"github.com/eventloka/server/internal/api/middleware"
	"github.com/eventloka/server/internal/auth"
	"github.com/eventloka/server/internal/config"
	"github.com/eventloka/server/internal/domain/accounts"
	"github.com/eventloka/server/internal/domain/events"
	"github.com/eventloka/server/internal/metrics"
)

// Dependencies are the constructed services the router wires handlers to.
type Dependencies struct {
	Accounts *accounts.Service
	Events   *events.Service
	Tokens   *auth.JWTManager
	DB       handlers.Pinger
}

func NewRouter(cfg config.Config, logger zerolog.Logger, deps Dependencies) http.Handler {
	authHandler := handlers.NewAuthHandler(deps.Accounts, cfg.Environment, cfg.Auth.ResetTokenInResponse)
	profileHandler := handlers.NewProfileHandler(deps.Accounts, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(deps.Events, cfg.Environment)

	authenticated := middleware.JWTAuth(deps.Tokens, cfg.Environment)
	organizerOnly := middleware.JWTAuth(deps.Tokens, cfg.Environment, accounts.RoleOrganizer)
	userOnly := middleware.JWTAuth(deps.Tokens, cfg.Environment, accounts.RoleUser)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(deps.DB))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/v1/auth/register", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Register),
	}))
	mux.Handle("/api/v1/auth/register/organizer", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.RegisterOrganizer),
	}))
	mux.Handle("/api/v1/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Login),
	}))
	mux.Handle("/api/v1/auth/forgot-password", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.ForgotPassword),
	}))
	mux.Handle("/api/v1/auth/reset-password", methodMux(map[string]http.Handler{
		http.MethodPatch: http.HandlerFunc(authHandler.ResetPassword),
	}))

	mux.Handle("/api/v1/profile", methodMux(map[string]http.Handler{
		http.MethodGet:   authenticated(http.HandlerFunc(profileHandler.GetProfile)),
		http.MethodPatch: authenticated(http.HandlerFunc(profileHandler.UpdateProfile)),
	}))
	mux.Handle("/api/v1/profile/password", methodMux(map[string]http.Handler{
		http.MethodPatch: authenticated(http.HandlerFunc(profileHandler.ChangePassword)),
	}))
	mux.Handle("/api/v1/profile/points", methodMux(map[string]http.Handler{
		http.MethodGet: userOnly(http.HandlerFunc(profileHandler.ListPoints)),
	}))
	mux.Handle("/api/v1/profile/vouchers", methodMux(map[string]http.Handler{
		http.MethodGet: userOnly(http.HandlerFunc(profileHandler.ListVouchers)),
	}))

	mux.Handle("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: organizerOnly(http.HandlerFunc(eventsHandler.Create)),
	}))
	mux.Handle("/api/v1/events/{slug}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Get),
	}))

	var handler http.Handler = mux
	handler = middleware.PublicRequestSize()(handler)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	// The tier must be set before the limiter reads it, so this sits
	// outside RateLimit in the chain.
	handler = loginTierByPath(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	return handler
}

// loginTierByPath marks credential endpoints for the aggressive login
// rate limit tier.
func loginTierByPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login", "/api/v1/auth/forgot-password":
			r = r.WithContext(middleware.WithRateLimitTier(r.Context(), middleware.TierLogin))
		}
		next.ServeHTTP(w, r)
	})
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
