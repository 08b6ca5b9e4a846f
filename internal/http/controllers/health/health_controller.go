// Package health contiene el controller de readiness.
package health

import (
	"net/http"

	"github.com/dropDatabas3/essgate/internal/http/helpers"
	svc "github.com/dropDatabas3/essgate/internal/http/services/health"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
)

// HealthController maneja las rutas de health check.
type HealthController struct {
	service svc.HealthService
}

func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := c.service.Check(ctx)

	if resp.Version != "" {
		w.Header().Set("X-Service-Version", resp.Version)
	}
	status := http.StatusOK
	if resp.Status == svc.StatusUnavailable {
		status = http.StatusServiceUnavailable
	}

	logger.From(ctx).Debug("health check completed",
		logger.Layer("controller"),
		logger.Op("HealthController.Readyz"),
		logger.String("status", resp.Status),
	)
	helpers.WriteJSON(w, status, resp)
}
