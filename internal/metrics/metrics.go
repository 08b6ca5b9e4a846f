// Package metrics define las métricas Prometheus del gateway.
//
// Los métodos de *Metrics son nil-safe: un servicio construido sin métricas no las registra.
package metrics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de login (label "result").
const (
	LoginSuccess         = "success"
	LoginValidation      = "validation"
	LoginInvalidAppID    = "invalid_app_id"
	LoginESSDisabled     = "ess_disabled"
	LoginPasswordNotSet  = "password_not_set"
	LoginInvalidPassword = "invalid_password"
	LoginDeviceMismatch  = "device_mismatch"
	LoginRateLimited     = "rate_limited"
	LoginError           = "error"
)

type Metrics struct {
	reg *prometheus.Registry

	loginTotal      *prometheus.CounterVec
	deviceBindings  prometheus.Counter
	deviceResets    *prometheus.CounterVec
	passwordUpdates *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight prometheus.Gauge
}

// New registra las métricas en reg. Con reg == nil usa un registry propio.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essgate_mobile_login_total",
			Help: "Intentos de login móvil por resultado",
		}, []string{"result"}),
		deviceBindings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "essgate_device_bindings_total",
			Help: "Dispositivos registrados en primer login",
		}),
		deviceResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essgate_device_resets_total",
			Help: "Resets de dispositivo por resultado",
		}, []string{"result"}),
		passwordUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essgate_app_password_updates_total",
			Help: "Cambios de password de la app por tipo (reset|change) y resultado",
		}, []string{"kind", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo",
		}),
	}

	m.reg = reg

	for _, c := range []prometheus.Collector{
		m.loginTotal, m.deviceBindings, m.deviceResets, m.passwordUpdates,
		m.httpRequests, m.httpDuration, m.httpInflight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

// Handler expone /metrics del registry propio.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// RegisterPool agrega gauges del pool de postgres.
func (m *Metrics) RegisterPool(stat func() *pgxpool.Stat) error {
	if m == nil || stat == nil {
		return nil
	}
	return registerCollector(m.reg, newPoolCollector(stat))
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.loginTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) DeviceBound() {
	if m == nil {
		return
	}
	m.deviceBindings.Inc()
}

func (m *Metrics) DeviceReset(result string) {
	if m == nil {
		return
	}
	m.deviceResets.WithLabelValues(result).Inc()
}

func (m *Metrics) PasswordUpdate(kind, result string) {
	if m == nil {
		return
	}
	m.passwordUpdates.WithLabelValues(kind, result).Inc()
}

// ObserveRequest lo llama el middleware de métricas al terminar cada request.
func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) InflightInc() {
	if m != nil {
		m.httpInflight.Inc()
	}
}

func (m *Metrics) InflightDec() {
	if m != nil {
		m.httpInflight.Dec()
	}
}

// poolCollector expone gauges del pool global.
type poolCollector struct {
	stat func() *pgxpool.Stat

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newPoolCollector(stat func() *pgxpool.Stat) *poolCollector {
	return &poolCollector{
		stat:         stat,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stat()
	if s == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(s.TotalConns()))
}
