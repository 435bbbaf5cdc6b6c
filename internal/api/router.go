package api

import (
	"log/slog"
	"net/http"

	"github.com/dragomirurdov/AtrijumApi/internal/api/handlers"
	"github.com/dragomirurdov/AtrijumApi/internal/api/middleware"
	"github.com/dragomirurdov/AtrijumApi/internal/config"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
	"github.com/dragomirurdov/AtrijumApi/internal/metrics"
	"github.com/dragomirurdov/AtrijumApi/internal/service"
	"github.com/dragomirurdov/AtrijumApi/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Services    *service.Services
	Hub         *websocket.Hub
	Translator  *i18n.Translator
	RateLimiter *middleware.RateLimiter
	Metrics     metrics.Recorder
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

func NewRouter(deps Deps, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logging(deps.Logger, deps.Metrics))
	r.Use(middleware.Language(deps.Translator))
	r.Use(middleware.Recovery(deps.Translator))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Translator)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.Services.Auth, deps.Translator, cfg.AllowedOrigins())
	requireAuth := middleware.Auth(deps.Services.Auth, deps.Translator)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Credential endpoints are rate limited per client
			r.Group(func(r chi.Router) {
				r.Use(deps.RateLimiter.Middleware())
				r.Post("/signup", authHandler.Signup)
				r.Post("/login", authHandler.Login)
			})
			r.Get("/activate/{secret}", authHandler.Activate)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Get("/sessions", authHandler.Sessions)
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/logout", authHandler.Logout)
				r.Post("/logout-all", authHandler.LogoutAll)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
