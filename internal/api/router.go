/**
 * @description
 * HTTP router for the tracker service using go-chi. Defines the API routes,
 * applies middleware for logging, CORS and authentication, and maps routes to
 * their handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers all service routes.
func NewRouter(h *Handler, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Tracker service is healthy"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users/register", h.handleRegister)
		r.Post("/users/login", h.handleLogin)
		r.Get("/default-subscriptions", h.handleListDefaultSubscriptions)
		r.Post("/default-subscriptions", h.handleCreateDefaultSubscription)

		// Protected routes that require authentication
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtSecret))

			r.Get("/users", h.handleGetProfile)
			r.Get("/users/currencies", h.handleListCurrencies)
			r.Put("/users/currency", h.handleSetCurrency)
			r.Post("/users/{userID}/premium", h.handleMakePremium)

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", h.handleCreateSubscription)
				r.Get("/", h.handleListSubscriptions)
				r.Get("/stats", h.handleAccountStats)
				r.Get("/{subscriptionID}", h.handleGetSubscription)
				r.Put("/{subscriptionID}", h.handleUpdateSubscription)
				r.Delete("/{subscriptionID}", h.handleDeleteSubscription)
				r.Put("/{subscriptionID}/reminders", h.handleUpdateReminderSettings)
			})
		})
	})

	return r
}
