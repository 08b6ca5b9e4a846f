package middlewares

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/dropDatabas3/essgate/internal/errorlog"
)

const maxRequestIDLen = 128

// WithRequestID propaga X-Request-ID o genera uno nuevo.
// El ID se expone en el header de respuesta y se inyecta en el contexto
// (también para el error sink).
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if rid == "" || len(rid) > maxRequestIDLen {
				var b [16]byte
				_, _ = rand.Read(b[:])
				rid = hex.EncodeToString(b[:])
			}

			w.Header().Set("X-Request-ID", rid)

			ctx := setRequestID(r.Context(), rid)
			ctx = errorlog.WithRequestID(ctx, rid)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
