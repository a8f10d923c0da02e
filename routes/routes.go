package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hackerwear/storefront/app"
	"github.com/hackerwear/storefront/handlers"
)

// requestTimeout caps the time a single request may hold a worker
const requestTimeout = 60 * time.Second

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(deps),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"WWW-Authenticate", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", handlers.IndexHandler())

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	// Catalog
	r.Get("/getproducts", deps.CatalogHandler.HandleGetProducts)

	// Account endpoints
	r.Post("/signup", handlers.AuthSignupHandler(deps))
	r.Post("/login", handlers.AuthLoginHandler(deps))

	// Session endpoints (require a valid bearer token)
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Get("/verify-user", handlers.AuthVerifyHandler(deps))
		r.Post("/logout", handlers.AuthLogoutHandler(deps))
		r.Post("/logout-all", handlers.AuthLogoutAllHandler(deps))
	})

	r.NotFound(handlers.NotFoundHandler())
	r.MethodNotAllowed(handlers.MethodNotAllowedHandler())

	return r
}

func allowedOrigins(deps *app.Dependencies) []string {
	if deps.Config == nil || len(deps.Config.CORS.AllowedOrigins) == 0 {
		return []string{"http://localhost:*"}
	}
	return deps.Config.CORS.AllowedOrigins
}
