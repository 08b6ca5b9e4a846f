package router

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/essgate/internal/cache"
	"github.com/dropDatabas3/essgate/internal/domain/repository"
	healthctrl "github.com/dropDatabas3/essgate/internal/http/controllers/health"
	mobilectrl "github.com/dropDatabas3/essgate/internal/http/controllers/mobile"
	"github.com/dropDatabas3/essgate/internal/http/helpers"
	healthsvc "github.com/dropDatabas3/essgate/internal/http/services/health"
	mobilesvc "github.com/dropDatabas3/essgate/internal/http/services/mobile"
	"github.com/dropDatabas3/essgate/internal/i18n"
	"github.com/dropDatabas3/essgate/internal/jwt"
	"github.com/dropDatabas3/essgate/internal/metrics"
	"github.com/dropDatabas3/essgate/internal/permission"
	"github.com/dropDatabas3/essgate/internal/rate"
	"github.com/dropDatabas3/essgate/internal/security/password"
	"github.com/dropDatabas3/essgate/internal/security/secretbox"
	"github.com/dropDatabas3/essgate/internal/session"
	"github.com/dropDatabas3/essgate/internal/store/memory"
)

func newServer(t *testing.T, loginLimit int) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	box, err := secretbox.New(base64.StdEncoding.EncodeToString(make([]byte, 32)))
	require.NoError(t, err)
	ks, err := jwt.NewEphemeral()
	require.NoError(t, err)
	c := cache.NewMemory("test", time.Hour, 0)
	tr, err := i18n.New("en")
	require.NoError(t, err)
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	st := memory.New()
	_, err = st.Users().Create(ctx, repository.CreateUserInput{ID: "ana@acme.test"})
	require.NoError(t, err)
	enc, err := box.Encrypt(secretbox.PurposeAppPassword, "1234")
	require.NoError(t, err)
	_, err = st.Employees().Create(ctx, repository.CreateEmployeeInput{
		ID: "HR-EMP-00001", UserID: "ana@acme.test", AppID: "ana", AppPasswordEnc: &enc, AllowESS: true,
	})
	require.NoError(t, err)

	sessions := session.NewManager(jwt.NewIssuer("essgate-test", ks), c, time.Hour)
	services := mobilesvc.NewServices(mobilesvc.Deps{
		Employees:   st.Employees(),
		Users:       st.Users(),
		Sessions:    sessions,
		Permissions: permission.NewRoleChecker(st.Users(), nil),
		Box:         box,
		Policy:      password.Policy{MinLength: 4},
		Metrics:     m,
	})
	health := healthsvc.NewHealthService(healthsvc.Deps{Checks: map[string]healthsvc.CheckFunc{
		"store": st.Ping,
		"cache": c.Ping,
	}})

	srv := httptest.NewServer(New(Deps{
		Mobile:       mobilectrl.NewMobileController(services, nil, helpers.CookieConfig{Name: "sid"}),
		Health:       healthctrl.NewHealthController(health),
		Sessions:     sessions,
		APITokens:    session.NewAPITokenAuthenticator(st.Users(), box),
		CookieName:   "sid",
		Translator:   tr,
		LoginLimiter: rate.NewFixedWindow(c, "rl:login", loginLimit, time.Minute),
		Metrics:      m,
	}))
	t.Cleanup(func() {
		srv.Close()
		_ = c.Close()
	})
	return srv
}

func postJSON(t *testing.T, url, body string, hdr map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res, out
}

const loginBody = `{"usr":"ana","app_password":"1234","device_id":"d","device_model":"m","device_brand":"b"}`

func TestRouter_LoginThenAPIToken(t *testing.T) {
	srv := newServer(t, 100)

	res, body := postJSON(t, srv.URL+MobilePrefix+"/login", loginBody, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "no-store", res.Header.Get("Cache-Control"))
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	data := body["data"].(map[string]any)
	token := "token " + data["api_key"].(string) + ":" + data["api_secret"].(string)

	// el par api_key:api_secret autentica requests posteriores
	res, body = postJSON(t, srv.URL+MobilePrefix+"/password/change",
		`{"old_app_password":"1234","new_app_password":"5678"}`, map[string]string{"Authorization": token})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "App password changed successfully", body["message"])
}

func TestRouter_LoginRateLimit(t *testing.T) {
	srv := newServer(t, 2)
	url := srv.URL + MobilePrefix + "/login"

	for i := 0; i < 2; i++ {
		res, _ := postJSON(t, url, `{"usr":"ghost","device_id":"d"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	}
	res, body := postJSON(t, url, loginBody, map[string]string{"Accept-Language": "es"})
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "Demasiadas solicitudes. Intente más tarde", body["message"])
	assert.NotEmpty(t, res.Header.Get("Retry-After"))
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	srv := newServer(t, 100)

	res, body := postJSON(t, srv.URL+"/nope", `{}`, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, false, body["success"])

	res, err := http.Get(srv.URL + MobilePrefix + "/login")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestRouter_ReadyzAndMetrics(t *testing.T) {
	srv := newServer(t, 100)

	res, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	_, _ = postJSON(t, srv.URL+MobilePrefix+"/login", loginBody, nil)

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `essgate_mobile_login_total{result="success"} 1`)
	assert.Contains(t, string(b), `route="/api/v1/mobile/login"`)
}

func TestRouter_PanicEnvelopeIsTranslated(t *testing.T) {
	tr, err := i18n.New("en")
	require.NoError(t, err)
	health := healthsvc.NewHealthService(healthsvc.Deps{Checks: map[string]healthsvc.CheckFunc{
		"store": func(context.Context) error { panic("store exploded") },
	}})
	srv := httptest.NewServer(New(Deps{
		Health:     healthctrl.NewHealthController(health),
		Translator: tr,
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/readyz", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "es")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Content-Language"), "es"))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Ocurrió un error. Intente nuevamente", body["message"])
}
