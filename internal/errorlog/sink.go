// Package errorlog registra errores internos para el operador: log con stack
// y fila persistida en error_log con el request id.
package errorlog

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
)

// Sink recibe errores inesperados de los handlers.
type Sink interface {
	Record(ctx context.Context, title string, err error)
}

type requestIDKey struct{}

// WithRequestID lo usa el middleware de request id para que el sink lo encuentre.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}

type StoreSink struct {
	repo repository.ErrorLogRepository
	now  func() time.Time
}

func NewStoreSink(repo repository.ErrorLogRepository) *StoreSink {
	return &StoreSink{repo: repo, now: time.Now}
}

func (s *StoreSink) Record(ctx context.Context, title string, err error) {
	if err == nil {
		return
	}
	rid := RequestIDFrom(ctx)
	stack := string(debug.Stack())

	logger.From(ctx).Error(title,
		logger.Component("errorlog"),
		logger.Err(err),
		zap.String("stack", stack),
	)

	entry := repository.ErrorLog{
		ID:        uuid.NewString(),
		Title:     title,
		Detail:    fmt.Sprintf("%+v\n\n%s", err, stack),
		RequestID: rid,
		CreatedAt: s.now().UTC(),
	}
	// El request puede estar cancelado; la fila igual se guarda.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if perr := s.repo.Insert(pctx, entry); perr != nil {
		logger.From(ctx).Warn("error log persist failed", logger.Component("errorlog"), logger.Err(perr))
	}
}
