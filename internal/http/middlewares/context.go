package middlewares

import (
	"context"

	"github.com/dropDatabas3/essgate/internal/session"
)

type ctxKey string

const (
	ctxIdentityKey  ctxKey = "identity"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithIdentity inyecta la identidad autenticada en el contexto.
func WithIdentity(ctx context.Context, id *session.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, id)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetIdentity devuelve la identidad del request o nil si es guest.
func GetIdentity(ctx context.Context) *session.Identity {
	if id, ok := ctx.Value(ctxIdentityKey).(*session.Identity); ok {
		return id
	}
	return nil
}

// GetUserID devuelve el usuario autenticado o "" si es guest.
func GetUserID(ctx context.Context) string {
	if id := GetIdentity(ctx); id != nil {
		return id.UserID
	}
	return ""
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}
