package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/polyglot-hub/llm-router/app"
	"github.com/polyglot-hub/llm-router/handlers"
)

// SetupRoutes configures all gateway routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/healthz", handlers.HealthCheck(deps))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Routing endpoints
		r.Post("/route/chat", handlers.ChatRouteHandler(deps))
		r.Get("/providers", handlers.ProvidersHandler(deps))
		r.Get("/stats", handlers.StatsHandler(deps))

		// Administrative endpoints (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Post("/providers/refresh", handlers.RefreshProvidersHandler(deps))
			r.Put("/router/config", handlers.ReconfigureHandler(deps))
			r.Delete("/stats", handlers.ResetStatsHandler(deps))
			r.Get("/decisions", handlers.DecisionsHandler(deps))
			r.Get("/decisions/{id}", handlers.DecisionHandler(deps))
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
