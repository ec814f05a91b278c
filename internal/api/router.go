package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/middleware"
)

// RouterConfig holds the HTTP-facing settings of the router.
type RouterConfig struct {
	CORSOrigins  []string
	TenantHeader string
	// Explain mounts the diagnostics route that returns compiled SQL and bound arguments.
	Explain bool
}

// NewRouter mounts the report routes behind logging, CORS and tenant middleware.
func NewRouter(h *Handler, cfg RouterConfig, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition"},
	})

	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(corsHandler.Handler)

	r.Get("/healthz", h.health)
	r.Route("/api/reports", func(r chi.Router) {
		r.Use(middleware.Tenant(cfg.TenantHeader, logger))
		r.Get("/{kind}", h.getReport)
		if cfg.Explain {
			r.Get("/{kind}/explain", h.explain)
		}
		r.Get("/{kind}/export.xlsx", h.exportXLSX)
		r.Get("/{kind}/export.csv", h.exportCSV)
	})
	return r
}
