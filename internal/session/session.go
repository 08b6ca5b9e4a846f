// Package session abre y valida sesiones de la app móvil.
//
// El token es un JWT EdDSA con sub (usuario) y sid; el sid además vive en el
// cache ("sess:<sid>") para poder revocar antes del exp.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/essgate/internal/cache"
	"github.com/dropDatabas3/essgate/internal/jwt"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrEmptyUser      = errors.New("session: empty user id")
)

type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Identity es lo que el middleware deja en el contexto tras autenticar.
type Identity struct {
	UserID    string
	SessionID string
}

type Manager struct {
	issuer *jwt.Issuer
	cache  cache.Client
	ttl    time.Duration
}

func NewManager(issuer *jwt.Issuer, c cache.Client, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Manager{issuer: issuer, cache: c, ttl: ttl}
}

func key(sid string) string { return "sess:" + sid }

// Login abre una sesión nueva para el usuario.
func (m *Manager) Login(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrEmptyUser
	}
	sid := uuid.NewString()
	tok, exp, err := m.issuer.IssueSession(sid, userID, m.ttl)
	if err != nil {
		return nil, err
	}
	if err := m.cache.Set(ctx, key(sid), userID, m.ttl); err != nil {
		return nil, err
	}
	return &Session{ID: sid, UserID: userID, Token: tok, ExpiresAt: exp}, nil
}

// Authenticate valida el token y que la sesión siga viva en el cache.
func (m *Manager) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := m.issuer.ParseSession(token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	owner, err := m.cache.Get(ctx, key(claims.SessionID))
	if cache.IsNotFound(err) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	if owner != claims.UserID {
		return nil, ErrInvalidSession
	}
	return &Identity{UserID: claims.UserID, SessionID: claims.SessionID}, nil
}

// Revoke invalida la sesión; idempotente.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if err := m.cache.Delete(ctx, key(sessionID)); err != nil && !cache.IsNotFound(err) {
		return err
	}
	return nil
}
