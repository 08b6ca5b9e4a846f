package repository

import (
	"context"
	"time"
)

// ErrorLog es un error interno registrado para diagnóstico del operador.
type ErrorLog struct {
	ID        string
	Title     string
	Detail    string
	RequestID string
	CreatedAt time.Time
}

// ErrorLogRepository persiste errores internos.
type ErrorLogRepository interface {
	Insert(ctx context.Context, e ErrorLog) error
	// Recent devuelve los últimos n registros, más nuevo primero.
	Recent(ctx context.Context, n int) ([]ErrorLog, error)
}
