package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shipquery/shipquery/internal/models"
	"github.com/shipquery/shipquery/internal/service"
)

const version = "1.0.0"

// HealthHandler handles GET /health with dependency checks
type HealthHandler struct {
	exec       service.Executor
	genEnabled bool
}

func NewHealthHandler(exec service.Executor, genEnabled bool) *HealthHandler {
	return &HealthHandler{exec: exec, genEnabled: genEnabled}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	// Short timeout so health checks never block
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.exec != nil {
		if err := h.exec.TestConnection(ctx); err != nil {
			checks["executor"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["executor"] = h.exec.Name() + ": ok"
		}
	} else {
		checks["executor"] = "disabled"
	}

	if h.genEnabled {
		checks["generator"] = "configured"
	} else {
		checks["generator"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}
