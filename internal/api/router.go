package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/vidfetch/internal/api/handler"
	mw "github.com/iconidentify/vidfetch/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
// A non-positive requestTimeout leaves requests unbounded.
func NewRouter(
	mediaHandler *handler.MediaHandler,
	healthHandler *handler.HealthHandler,
	requestTimeout time.Duration,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}
	r.Use(mw.CORS)

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/video", func(r chi.Router) {
		r.Post("/analyze", mediaHandler.Analyze)
		r.Post("/download", mediaHandler.Download)
		r.Get("/supported-sites", mediaHandler.SupportedSites)
		r.Get("/health", healthHandler.Health)
		r.Get("/file/{downloadID}/{filename}", mediaHandler.File)
	})

	return r
}
