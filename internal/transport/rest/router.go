package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	apispec "github.com/gradsync/portal/api"
	"github.com/gradsync/portal/internal/transport/middleware"
	"github.com/gradsync/portal/internal/transport/swagger"
)

// NewRouter assembles the local docs server: the OpenAPI document, the
// Swagger UI, and liveness endpoints including a cache check.
func NewRouter(cache CachePinger, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	healthHandler := NewHealthHandler(cache, logger)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(apispec.SpecYAML)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	return router
}
