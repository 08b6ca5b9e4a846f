package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// SessionClaims son los claims que usa el middleware de auth.
type SessionClaims struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

// ParseSession valida firma EdDSA, kid, iss y exp/nbf (tolerancia 30s).
func (i *Issuer) ParseSession(token string) (*SessionClaims, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != i.Keys.KID {
			return nil, errors.New("unknown_kid")
		}
		return i.Keys.Pub, nil
	}

	tok, err := jwtv5.Parse(token, keyfunc,
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithLeeway(30*time.Second),
		jwtv5.WithTimeFunc(i.Now),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if i.Iss != "" {
		if iss, _ := claims["iss"].(string); iss != i.Iss {
			return nil, ErrInvalidIssuer
		}
	}

	sub, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)
	if sub == "" || sid == "" {
		return nil, ErrMissingClaims
	}
	out := &SessionClaims{UserID: sub, SessionID: sid}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
