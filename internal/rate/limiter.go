package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/essgate/internal/cache"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// FixedWindow cuenta hits por ventana fija sobre cache.Client (memory o redis).
type FixedWindow struct {
	Cache  cache.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewFixedWindow(c cache.Client, prefix string, max int, window time.Duration) *FixedWindow {
	if prefix == "" {
		prefix = "rl"
	}
	return &FixedWindow{Cache: c, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *FixedWindow) Allow(ctx context.Context, key string) (Result, error) {
	winStart := time.Now().UTC().Truncate(l.Window)
	k := fmt.Sprintf("%s:%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	hits, ttl, err := l.Cache.Incr(ctx, k, l.Window)
	if err != nil {
		return Result{}, err
	}

	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= l.Max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = l.Window
		}
	}
	return res, nil
}
