package helpers

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig parámetros de la cookie de sesión.
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
}

func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// BuildCookie arma la cookie HttpOnly de sesión; ttl 0 = cookie de sesión del navegador.
func BuildCookie(cfg CookieConfig, value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     cfg.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: ParseSameSite(cfg.SameSite),
	}
	if strings.TrimSpace(cfg.Domain) != "" {
		ck.Domain = cfg.Domain
	}
	if ttl > 0 {
		ck.Expires = time.Now().Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}
