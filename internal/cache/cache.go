// Package cache provee un KV con TTL para sesiones y ventanas de rate limit.
//
// Backends:
//   - memory: go-cache en proceso (desarrollo, tests, un solo nodo)
//   - redis: compartido entre réplicas
package cache

import (
	"context"
	"errors"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor; ttl 0 = sin expiración.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Incr incrementa un contador y fija el TTL cuando la key es nueva.
	// Devuelve el valor resultante y el TTL restante.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error)

	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// Config configuración para crear un cliente de cache.
type Config struct {
	Driver          string // "memory" | "redis"
	Addr            string // host:port para redis
	Password        string
	DB              int
	Prefix          string
	DefaultTTL      time.Duration // sólo memory
	CleanupInterval time.Duration // sólo memory; 0 = sin janitor
}

// ErrNotFound indica que la key no existe.
var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New crea un cliente de cache según la configuración.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(ctx, cfg)
	default:
		return NewMemory(cfg.Prefix, cfg.DefaultTTL, cfg.CleanupInterval), nil
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
