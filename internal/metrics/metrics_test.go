package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.Login(LoginSuccess)
	m.Login(LoginSuccess)
	m.Login(LoginDeviceMismatch)
	m.DeviceBound()
	m.DeviceReset("success")
	m.PasswordUpdate("change", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginTotal.WithLabelValues(LoginSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginTotal.WithLabelValues(LoginDeviceMismatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deviceBindings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passwordUpdates.WithLabelValues("change", "success")))
}

func TestNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Login(LoginError)
		m.DeviceBound()
		m.DeviceReset("error")
		m.PasswordUpdate("reset", "error")
		m.ObserveRequest("POST", "/x", 200, 0.1)
		m.InflightInc()
		m.InflightDec()
		_ = m.RegisterPool(nil)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	m.ObserveRequest("POST", "/api/v1/mobile/login", 200, 0.02)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `http_requests_total{method="POST",route="/api/v1/mobile/login",status="200"} 1`)
}
