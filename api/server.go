/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions:
  the wiring layer between URLs and handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       The rota-editing UI runs on its own origin

SECURITY NOTE:
  Authentication and session handling live in front of this service; all
  routes here assume an already-authorized caller.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates the router with all routes configured. allowedOrigins
// feeds the CORS middleware; empty means same-origin only.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/employees/{id}", func(r chi.Router) {
			r.Post("/shifts/template", h.SaveTemplate)
			r.Post("/shifts", h.CreateShift)
			r.Post("/timeoffs", h.SaveTimeOff)
			r.Get("/week", h.GetWeek)
			r.Get("/week/summary", h.GetWeekSummary)
			r.Get("/range", h.GetRange)
			r.Get("/rota.ics", h.ExportICS)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Put("/{id}", h.UpdateShift)
			r.Delete("/{id}", h.DeleteShift)
		})

		r.Route("/timeoffs", func(r chi.Router) {
			r.Delete("/{id}", h.DeleteTimeOff)
		})

		r.Route("/series", func(r chi.Router) {
			r.Delete("/{rid}", h.DeleteSeries)
		})
	})

	return r
}
