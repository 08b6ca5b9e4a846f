// Package health contiene el service de readiness.
package health

import (
	"context"
	"time"

	dto "github.com/dropDatabas3/essgate/internal/http/dto/health"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
)

const (
	StatusReady       = "ready"
	StatusUnavailable = "unavailable"
)

// CheckFunc sondea un componente; nil = ok.
type CheckFunc func(ctx context.Context) error

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	Checks  map[string]CheckFunc // ej. "store", "cache"
	Version string
	Timeout time.Duration // por componente; 0 = 2s
}

type healthService struct {
	deps Deps
}

func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)

	resp := dto.HealthResponse{
		Status:     StatusReady,
		Components: make(map[string]dto.HealthStatus, len(s.deps.Checks)),
		Version:    s.deps.Version,
		Timestamp:  time.Now().UTC(),
	}
	for name, check := range s.deps.Checks {
		cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
		start := time.Now()
		err := check(cctx)
		cancel()

		st := dto.HealthStatus{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
		if err != nil {
			st.Status = "error"
			st.Message = err.Error()
			resp.Status = StatusUnavailable
			log.Warn("component unhealthy", logger.String("component", name), logger.Err(err))
		}
		resp.Components[name] = st
	}
	return resp
}
