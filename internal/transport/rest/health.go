package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gradsync/portal/internal/transport"
	"github.com/gradsync/portal/pkg/logger"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// CachePinger reports whether the local storage cache is reachable.
type CachePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	*transport.BaseHandler
	cache CachePinger
}

func NewHealthHandler(cache CachePinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: transport.NewBaseHandler(logger),
		cache:       cache,
	}
}

// pingHandler just says the process is up
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// healthCheckHandler checks the local cache
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			logger.From(r.Context()).Warn("cache ping failed", "error", err)
			entry.Status = HealthUnhealthy
			entry.Message = err.Error()
		}
	}
	entry.DurationMs = time.Since(start).Milliseconds()

	resp := HealthResponse{
		Status:     entry.Status,
		CheckedAt:  time.Now(),
		Components: map[string]CheckEntry{"cache": entry},
	}

	statusCode := http.StatusOK
	if entry.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	h.WriteJSON(w, statusCode, resp)
}
