package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkleber/kaltrack/internal/actions"
	"github.com/mkleber/kaltrack/internal/chat"
	"github.com/mkleber/kaltrack/internal/config"
	"github.com/mkleber/kaltrack/internal/foodkb"
	"github.com/mkleber/kaltrack/internal/ledger"
)

func NewRouter(cfg *config.Config, chatSvc *chat.Service, manager *actions.Manager, store *ledger.Store, resolver *foodkb.Resolver) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)

	handlers := NewHandlers(cfg, chatSvc, manager, store, resolver)
	chatLimiter := NewRateLimiter(20, time.Minute)

	// Public endpoints
	r.Get("/health", handlers.Health)

	// API v1 routes (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.APIToken))
		r.Use(JSONContentType)

		r.Route("/chat", func(r chi.Router) {
			r.Use(RateLimitMiddleware(chatLimiter))
			r.Post("/", handlers.Chat)
			r.Post("/reset", handlers.ChatReset)
		})

		r.Route("/actions", func(r chi.Router) {
			r.Get("/", handlers.Actions)
			r.Post("/confirm-all", handlers.ConfirmAll)
			r.Post("/reject-all", handlers.RejectAll)
			r.Post("/{id}/confirm", handlers.ConfirmAction)
			r.Post("/{id}/reject", handlers.RejectAction)
		})

		r.Get("/days", handlers.Days)
		r.Get("/days/{date}", handlers.Day)

		r.Route("/foods", func(r chi.Router) {
			r.Get("/", handlers.Foods)
			r.Post("/", handlers.SaveFood)
			r.Get("/search", handlers.SearchFoods)
			r.Delete("/{id}", handlers.DeleteFood)
		})

		r.Get("/profile", handlers.Profile)
		r.Put("/profile", handlers.SaveProfile)
	})

	return r
}
