/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/suppliers/*      Supplier and payment-terms management
  /api/contracts/*      Contract management
  /api/projections/*    Projected payment reporting
  /api/import           Bulk spreadsheet import
  /api/export           CSV / Excel export
  /api/dashboard/*      Dashboard stats
  /api/seed             Demo data (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Supplier routes
		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.ListSuppliers)
			r.Post("/", h.CreateSupplier)
			r.Get("/presets", h.ListTermPresets)
			r.Get("/{id}", h.GetSupplier)
			r.Put("/{id}", h.UpdateSupplier)
			r.Delete("/{id}", h.DeleteSupplier)
		})

		// Contract routes
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", h.ListContracts)
			r.Post("/", h.CreateContract)
			r.Get("/{id}", h.GetContract)
			r.Get("/{id}/projections", h.GetContractProjections)
			r.Put("/{id}", h.UpdateContract)
			r.Delete("/{id}", h.DeleteContract)
		})

		// Projection routes
		r.Route("/projections", func(r chi.Router) {
			r.Get("/", h.GetProjections)
			r.Post("/regenerate", h.RegenerateProjections)
		})

		// Import / export routes
		r.Post("/import", h.ImportContracts)
		r.Post("/import/errors", h.ImportErrorReport)
		r.Get("/export", h.Export)

		// Dashboard routes
		r.Get("/dashboard/stats", h.DashboardStats)

		// Demo data
		r.Post("/seed", h.SeedDemoData)
	})

	return r
}
