package middlewares

import (
	"net/http"
	"strconv"
	"time"

	httperrors "github.com/dropDatabas3/essgate/internal/http/errors"
	"github.com/dropDatabas3/essgate/internal/http/helpers"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
	"github.com/dropDatabas3/essgate/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPOnlyRateKey genera una clave basada solo en IP; el login no lee el body acá.
func IPOnlyRateKey(r *http.Request) string {
	return helpers.ClientIP(r)
}

// RateLimitConfig configura el middleware de rate limiting.
type RateLimitConfig struct {
	Limiter   rate.Limiter
	KeyFunc   RateKeyFunc
	Whitelist []string            // paths excluidos
	OnLimited func(*http.Request) // hook opcional (métricas)
}

// WithRateLimit rechaza con 429 al superar la ventana. Ante error del limiter deja pasar.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPOnlyRateKey
	}

	whitelistSet := make(map[string]struct{}, len(cfg.Whitelist))
	for _, p := range cfg.Whitelist {
		whitelistSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := whitelistSet[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyFunc(r)
			res, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				logger.From(r.Context()).Warn("rate limit error", logger.Component("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				if cfg.OnLimited != nil {
					cfg.OnLimited(r)
				}
				logger.From(r.Context()).Info("rate limited", logger.Component("rate"), logger.String("key", key))
				httperrors.WriteError(w, r, httperrors.ErrRateLimitExceeded)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
