package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anketahub/anketa-api/internal/api"
	apiMiddleware "github.com/anketahub/anketa-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.authService, app.config.Auth, app.logger)
	listingHandler := api.NewListingHandler(app.listingService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public; refresh and logout carry the
		// refresh token in a cookie rather than a bearer header)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/approve/register", authHandler.ApproveRegister)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)
		r.Delete("/auth/logout", authHandler.Logout)
		r.Post("/auth/recovery", authHandler.Recovery)
		r.Post("/auth/approve/recovery", authHandler.ApproveRecovery)
		r.Patch("/auth/approve/update", authHandler.UpdatePassword)

		// Public catalog endpoints; a bearer token is honored when present
		// so admins see their status filter and views dedupe by user
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.OptionalAuthenticate)
			r.Post("/forms/filter", listingHandler.List)
			r.Get("/forms/{id}", listingHandler.Get)
		})

		// Contact reveal endpoints (public)
		r.Post("/forms/{id}/phone", listingHandler.GetPhone)
		r.Post("/forms/{id}/telegram", listingHandler.GetTelegram)
		r.Post("/forms/{id}/whatsapp", listingHandler.GetWhatsApp)

		// Protected listing endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/forms", listingHandler.Create)
			r.Delete("/forms/{id}", listingHandler.Delete)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
