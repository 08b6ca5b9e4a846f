package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/essgate/internal/observability/logger"
	"github.com/dropDatabas3/essgate/internal/session"
)

// SessionAuthenticator valida un token de sesión (cookie o Bearer).
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Identity, error)
}

// APITokenAuthenticator valida el par api_key:api_secret.
type APITokenAuthenticator interface {
	Authenticate(ctx context.Context, key, secret string) (*session.Identity, error)
}

type AuthConfig struct {
	Sessions   SessionAuthenticator
	APITokens  APITokenAuthenticator // nil = esquema "token" deshabilitado
	CookieName string
}

// WithAuth resuelve la identidad del request sin bloquear: si ninguna
// credencial es válida el request sigue como guest y cada handler decide.
// Orden: Authorization (Bearer | token) y después la cookie de sesión.
func WithAuth(cfg AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.From(ctx).With(logger.Component("auth"))

			id, scheme, err := resolveIdentity(r, cfg)
			switch {
			case err != nil:
				log.Debug("credentials rejected", logger.String("scheme", scheme), logger.Err(err))
			case id != nil:
				ctx = WithIdentity(ctx, id)
				ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(id.UserID)))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveIdentity(r *http.Request, cfg AuthConfig) (*session.Identity, string, error) {
	ctx := r.Context()
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		scheme, cred, _ := strings.Cut(h, " ")
		cred = strings.TrimSpace(cred)
		switch strings.ToLower(scheme) {
		case "bearer":
			if cfg.Sessions != nil && cred != "" {
				id, err := cfg.Sessions.Authenticate(ctx, cred)
				return id, "bearer", err
			}
		case "token":
			if cfg.APITokens != nil {
				key, secret, ok := session.ParseAPIToken(cred)
				if !ok {
					return nil, "token", session.ErrInvalidAPIToken
				}
				id, err := cfg.APITokens.Authenticate(ctx, key, secret)
				return id, "token", err
			}
		}
	}

	if cfg.Sessions != nil && cfg.CookieName != "" {
		if ck, err := r.Cookie(cfg.CookieName); err == nil && ck.Value != "" {
			id, err := cfg.Sessions.Authenticate(ctx, ck.Value)
			return id, "cookie", err
		}
	}
	return nil, "", nil
}
