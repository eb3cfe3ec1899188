// Package rate implementa limitación fixed-window por clave, en Redis o en
// memoria del proceso.
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
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

func windowKey(prefix, key string, winStart time.Time) string {
	return fmt.Sprintf("%s%s:%d", prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())
}

func result(hits, max int64, ttl, window time.Duration) Result {
	remaining := max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		// Retry after: resto de la ventana
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Duration(math.Ceil(window.Seconds())) * time.Second
		}
	}
	return res
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE NX), compartido entre réplicas.
type RedisLimiter struct {
	Client rdb.UniversalClient
	Prefix string
	Max    int64
	Window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rdb.UniversalClient, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	winStart := l.now().UTC().Truncate(l.Window)
	redisKey := windowKey(l.Prefix, key, winStart)

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.Window)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}
	return result(incr.Val(), l.Max, ttl.Val(), l.Window), nil
}

// MemoryLimiter guarda los contadores en go-cache. Sirve para una sola
// réplica; con varias, cada una limita por separado.
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.window)
	k := windowKey("", key, winStart)
	ttl := winStart.Add(l.window).Sub(now)

	// Add falla si ya existe: sólo el primer hit fija la expiración.
	_ = l.c.Add(k, int64(0), ttl)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// La entrada expiró entre Add e Increment: nueva ventana.
		l.c.Set(k, int64(1), ttl)
		hits = 1
	}
	return result(hits, l.max, ttl, l.window), nil
}

// Noop deja pasar todo (rate.disabled).
type Noop struct{}

func (Noop) Allow(context.Context, string) (Result, error) { return Result{Allowed: true}, nil }
