// Package store abre el backend de persistencia configurado y aplica migraciones.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
	"github.com/dropDatabas3/essgate/internal/store/memory"
	"github.com/dropDatabas3/essgate/internal/store/pg"
)

type Config struct {
	Driver   string
	DSN      string
	Postgres pg.PoolConfig
	// ConnectRetries: reintentos del primer ping (backoff exponencial). 0 = sin reintentos.
	ConnectRetries int
	// RetryBase: espera inicial del backoff; default 500ms.
	RetryBase time.Duration
}

// Stores agrupa los repositorios que consumen los servicios.
type Stores interface {
	Employees() repository.EmployeeRepository
	Users() repository.UserRepository
	ErrorLogs() repository.ErrorLogRepository
	Ping(ctx context.Context) error
	Close()
}

// Open abre el driver configurado. Para postgres reintenta el connect con backoff
// así el servicio tolera que la DB levante después que él (docker compose, k8s).
func Open(ctx context.Context, cfg Config) (Stores, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return memory.New(), nil
	case "postgres", "pg", "postgresql":
		return openPG(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}

func openPG(ctx context.Context, cfg Config) (*pg.Store, error) {
	base := cfg.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}
	backoff := retry.WithMaxRetries(uint64(retries), retry.WithCappedDuration(10*time.Second, retry.NewExponential(base)))

	log := logger.From(ctx).With(logger.Component("store"))
	attempt := 0
	var st *pg.Store
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		s, err := pg.New(ctx, cfg.DSN, cfg.Postgres)
		if err != nil {
			log.Warn("pg connect failed", zap.Int("attempt", attempt), logger.Err(err))
			return retry.RetryableError(err)
		}
		st = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres after %d attempts: %w", attempt, err)
	}
	return st, nil
}
