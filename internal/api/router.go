package api

import (
	"github.com/L33hy/cse340/internal/api/handlers"
	"github.com/L33hy/cse340/internal/auth"
	"github.com/L33hy/cse340/internal/services"
	"github.com/L33hy/cse340/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	accountService services.AccountServiceProvider,
	activityService services.ActivityServiceProvider,
	tokens *auth.TokenService,
	cookies *auth.CookieManager,
	renderer view.Renderer,
	nav view.NavProvider,
	flash *view.Flash,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(Recoverer(renderer, nav))

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Every request resolves its identity from the session cookie before
	// dispatch.
	r.Use(auth.ResolveIdentity(tokens, cookies))

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(
		accountService, activityService, tokens, cookies, renderer, nav, flash)
	siteHandler := handlers.NewSiteHandler(renderer, nav, flash)

	r.Get("/", siteHandler.Home)

	r.Route("/account", func(r chi.Router) {
		r.Get("/login", accountHandler.BuildLogin)
		r.Post("/login", accountHandler.Login)
		r.Get("/register", accountHandler.BuildRegister)
		r.Post("/register", accountHandler.Register)
		r.Get("/logout", accountHandler.Logout)

		// Authenticated-only pages
		r.Group(func(r chi.Router) {
			r.Use(RequireLogin(flash))
			r.Get("/", accountHandler.Management)
			r.Get("/update/{accountID}", accountHandler.BuildUpdate)
			r.Post("/update", accountHandler.UpdateAccount)
			r.Post("/update-password", accountHandler.UpdatePassword)
		})
	})

	// File Not Found Route - must be last route in list
	r.NotFound(siteHandler.NotFound)

	return r
}
