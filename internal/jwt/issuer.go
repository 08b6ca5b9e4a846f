package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Issuer firma los tokens de sesión de la app móvil.
type Issuer struct {
	Iss  string  // "iss"
	Keys *KeySet // clave activa
	Now  func() time.Time
}

func NewIssuer(iss string, ks *KeySet) *Issuer {
	return &Issuer{Iss: iss, Keys: ks, Now: time.Now}
}

// IssueSession emite un JWT con sub=userID y sid=sessionID.
func (i *Issuer) IssueSession(sessionID, userID string, ttl time.Duration) (string, time.Time, error) {
	now := i.Now().UTC()
	exp := now.Add(ttl)

	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": userID,
		"sid": sessionID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = i.Keys.KID
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.Keys.Priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

var (
	ErrInvalidIssuer = errors.New("invalid_issuer")
	ErrInvalidToken  = errors.New("invalid_jwt")
	ErrMissingClaims = errors.New("missing_claims")
)
