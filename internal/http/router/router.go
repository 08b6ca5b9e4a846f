// Package router arma el árbol de rutas chi del gateway.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/essgate/internal/errorlog"
	healthctrl "github.com/dropDatabas3/essgate/internal/http/controllers/health"
	mobilectrl "github.com/dropDatabas3/essgate/internal/http/controllers/mobile"
	httperrors "github.com/dropDatabas3/essgate/internal/http/errors"
	mw "github.com/dropDatabas3/essgate/internal/http/middlewares"
	"github.com/dropDatabas3/essgate/internal/i18n"
	"github.com/dropDatabas3/essgate/internal/metrics"
	"github.com/dropDatabas3/essgate/internal/rate"
)

// MobilePrefix prefijo de los endpoints de la app.
const MobilePrefix = "/api/v1/mobile"

// Deps contiene todo lo que necesita el router.
type Deps struct {
	Mobile *mobilectrl.MobileController
	Health *healthctrl.HealthController

	// Middlewares
	Sessions     mw.SessionAuthenticator
	APITokens    mw.APITokenAuthenticator // nil = esquema "token" deshabilitado
	CookieName   string
	Translator   *i18n.Translator
	LoginLimiter rate.Limiter // nil = login sin rate limit
	Sink         errorlog.Sink

	// Metrics nil = sin /metrics ni métricas HTTP
	Metrics *metrics.Metrics
}

// New devuelve el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// WithLocale va antes de WithRecover: el sobre de un panic también se traduce.
	r.Use(
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithLocale(d.Translator),
		mw.WithRecover(d.Sink),
		mw.WithMetrics(d.Metrics),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrMethodNotAllowed)
	})

	if d.Health != nil {
		r.Get("/readyz", d.Health.Readyz)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	if d.Mobile != nil {
		r.Route(MobilePrefix, func(r chi.Router) {
			registerMobileRoutes(r, d)
		})
	}
	return r
}

func registerMobileRoutes(r chi.Router, d Deps) {
	c := d.Mobile

	r.Use(
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
		mw.WithAuth(mw.AuthConfig{
			Sessions:   d.Sessions,
			APITokens:  d.APITokens,
			CookieName: d.CookieName,
		}),
	)

	// POST /api/v1/mobile/login (guest, rate limit por IP)
	r.With(mw.WithRateLimit(mw.RateLimitConfig{
		Limiter: d.LoginLimiter,
		KeyFunc: mw.IPOnlyRateKey,
		OnLimited: func(*http.Request) {
			d.Metrics.Login(metrics.LoginRateLimited)
		},
	})).Post("/login", c.Login)

	// POST /api/v1/mobile/password/reset (sesión)
	r.Post("/password/reset", c.ResetPassword)

	// POST /api/v1/mobile/device/reset (sesión + Employee:write)
	r.Post("/device/reset", c.ResetDevice)

	// POST /api/v1/mobile/password/change (sesión)
	r.Post("/password/change", c.ChangePassword)
}
