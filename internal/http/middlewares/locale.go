package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/essgate/internal/i18n"
)

// WithLocale elige el idioma por Accept-Language y lo deja en el contexto
// para que los mensajes de respuesta salgan traducidos.
func WithLocale(tr *i18n.Translator) Middleware {
	if tr == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag := tr.Match(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", tag.String())
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(i18n.WithLanguage(r.Context(), tr, tag)))
		})
	}
}
