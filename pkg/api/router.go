// Package api assembles the middleware chain and route table.
package api

import (
	"fmt"
	"net/http"
	"time"

	"org-registry-backend/pkg/config"
	"org-registry-backend/pkg/database"
	"org-registry-backend/pkg/handlers"
	customMiddleware "org-registry-backend/pkg/middleware"
	"org-registry-backend/pkg/ratelimit"
	"org-registry-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// NewRouter builds the full HTTP surface. limiter may be nil, which
// disables rate limiting on the auth endpoints.
func NewRouter(cfg *config.Config, db database.Store, limiter *ratelimit.Limiter) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg)
	setupRoutes(router, cfg, db, limiter)

	return router
}

// setupMiddleware installs the global middleware chain.
func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(customMiddleware.Logger(cfg))
	router.Use(middleware.Recoverer)

	router.Use(customMiddleware.CORS(cfg))

	router.Use(middleware.Timeout(25 * time.Second))
	router.Use(middleware.Compress(5))

	router.Use(customMiddleware.MaxBodySize(maxBodyBytes))
	router.Use(customMiddleware.ContentTypeJSON)

	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes wires every endpoint.
func setupRoutes(router *chi.Mux, cfg *config.Config, db database.Store, limiter *ratelimit.Limiter) {
	authHandler := handlers.NewAuthHandler(cfg, db)
	orgsHandler := handlers.NewOrgsHandler(cfg, db)
	employeesHandler := handlers.NewEmployeesHandler(cfg, db)

	// Health check endpoint
	router.Get("/", authHandler.HealthCheck)

	router.Route("/api", func(r chi.Router) {
		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Use(customMiddleware.RateLimit(limiter, "auth",
				customMiddleware.AuthRateLimit, customMiddleware.AuthRateWindow))

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.AuthMiddleware(cfg, db))

			r.Route("/user", func(r chi.Router) {
				r.Get("/profile", authHandler.Profile)
				r.Delete("/account", authHandler.DeactivateAccount)
			})

			r.Route("/orgs", func(r chi.Router) {
				r.Get("/", orgsHandler.ListMyOrganizations)
				r.Post("/", orgsHandler.CreateOrganization)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", orgsHandler.GetOrganization)
					r.Put("/", orgsHandler.UpdateOrganization)
					r.Delete("/", orgsHandler.DeleteOrganization)

					// Collaborator sub-resource (creator only)
					r.Get("/access", orgsHandler.ListAccess)
					r.Post("/access", orgsHandler.GrantAccess)
					r.Delete("/access", orgsHandler.RevokeAccess)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeesHandler.ListEmployees)
				r.Post("/", employeesHandler.CreateEmployee)
				r.Get("/{id}", employeesHandler.GetEmployee)
				r.Put("/{id}", employeesHandler.UpdateEmployee)
				r.Patch("/{id}", employeesHandler.PatchEmployee)
				r.Delete("/{id}", employeesHandler.DeleteEmployee)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}
