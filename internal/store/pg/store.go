// Package pg implementa los repositorios de essgate sobre PostgreSQL (pgx v5).
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
)

// DB es el subconjunto de pgxpool.Pool que usan los repos (pgxmock lo implementa).
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PoolConfig ajustes opcionales del pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type Store struct {
	pool *pgxpool.Pool
	db   DB

	employees *EmployeeRepo
	users     *UserRepo
	errorLogs *ErrorLogRepo
}

// New abre el pool y hace ping. El retry de arranque lo maneja el caller.
func New(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("PG_CONFIG_INVALID").Wrap(err)
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// Mapear MaxIdleConns → MinConns (pgxpool)
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 10
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, oops.Code("PG_POOL_FAILED").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("PG_PING_FAILED").Wrap(err)
	}
	logger.Named("store.pg").Info("pg pool ready", zap.Int32("max_conns", pcfg.MaxConns))

	s := NewWithDB(pool)
	s.pool = pool
	return s, nil
}

// NewWithDB arma el Store sobre una conexión ya abierta (tests con pgxmock).
func NewWithDB(db DB) *Store {
	return &Store{
		db:        db,
		employees: NewEmployeeRepo(db),
		users:     NewUserRepo(db),
		errorLogs: NewErrorLogRepo(db),
	}
}

func (s *Store) Employees() repository.EmployeeRepository { return s.employees }
func (s *Store) Users() repository.UserRepository         { return s.users }
func (s *Store) ErrorLogs() repository.ErrorLogRepository { return s.errorLogs }

func (s *Store) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// PoolStats devuelve un snapshot del pool (nil con pgxmock).
func (s *Store) PoolStats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

// isUniqueViolation detecta SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
