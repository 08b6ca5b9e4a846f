package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/essgate/internal/metrics"
)

// WithMetrics registra latencia y status por ruta. La ruta es el patrón de chi
// para no explotar la cardinalidad con paths arbitrarios.
func WithMetrics(m *metrics.Metrics) Middleware {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.InflightInc()
			defer m.InflightDec()

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}
			m.ObserveRequest(r.Method, route, rec.status, time.Since(start).Seconds())
		})
	}
}
