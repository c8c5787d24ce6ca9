package v1

import (
	"net/http"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
	"github.com/mygeone2/quotes-fake-api/internal/core/port"
)

type HealthHandler struct {
	healthService port.HealthService
}

func NewHealthHandler(
	healthService port.HealthService,
) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// GetSystemHealth handles GET /health
func (h *HealthHandler) GetSystemHealth(w http.ResponseWriter, r *http.Request) {
	if h.healthService == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "health service not available")
		return
	}

	healthStatus, err := h.healthService.GetSystemHealth(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "failed to get system health: "+err.Error())
		return
	}

	writeJSONResponse(w, healthStatusCode(healthStatus), healthStatus)
}

// GetDetailedHealth handles GET /health/detailed
func (h *HealthHandler) GetDetailedHealth(w http.ResponseWriter, r *http.Request) {
	if h.healthService == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "health service not available")
		return
	}

	healthStatus, err := h.healthService.GetDetailedHealth(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "failed to get detailed health: "+err.Error())
		return
	}

	writeJSONResponse(w, healthStatusCode(healthStatus), healthStatus)
}

func healthStatusCode(status *domain.HealthStatus) int {
	switch status.Status {
	case "unhealthy":
		return http.StatusServiceUnavailable
	case "degraded":
		return http.StatusOK // Still operational, but with warnings
	case "healthy":
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
