package middlewares

import (
	"fmt"
	"net/http"

	"github.com/dropDatabas3/essgate/internal/errorlog"
	httperrors "github.com/dropDatabas3/essgate/internal/http/errors"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
)

// WithRecover captura panics y responde el envelope genérico en lugar de crashear.
// Si sink no es nil el panic queda registrado en el error log.
func WithRecover(sink errorlog.Sink) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.From(r.Context()).Error("panic recovered",
					logger.Op("recover"),
					logger.Any("panic", rec),
				)
				if sink != nil {
					sink.Record(r.Context(), "Panic "+r.Method+" "+r.URL.Path, fmt.Errorf("panic: %v", rec))
				}
				httperrors.WriteError(w, r, httperrors.ErrInternal.WithDetail("panic recovered"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
