// Package ratelimit throttles generation requests per client key.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Unlimited allows everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

// Memory keeps a token bucket per key. Idle buckets expire after idleTTL.
type Memory struct {
	limit   rate.Limit
	burst   int
	buckets *cache.Cache
}

// NewMemory allows perMinute requests per key per minute with the given burst.
func NewMemory(perMinute, burst int, idleTTL time.Duration) *Memory {
	if burst <= 0 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &Memory{
		limit:   rate.Every(time.Minute / time.Duration(max(perMinute, 1))),
		burst:   burst,
		buckets: cache.New(idleTTL, 2*idleTTL),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	if v, ok := m.buckets.Get(key); ok {
		lim := v.(*rate.Limiter)
		m.buckets.SetDefault(key, lim)
		return lim.Allow(), nil
	}
	lim := rate.NewLimiter(m.limit, m.burst)
	if err := m.buckets.Add(key, lim, cache.DefaultExpiration); err != nil {
		// Lost a race with another request for the same key.
		if v, ok := m.buckets.Get(key); ok {
			return v.(*rate.Limiter).Allow(), nil
		}
	}
	return lim.Allow(), nil
}

// Redis is a fixed-window counter shared by every server instance.
type Redis struct {
	rdb    goredis.Cmdable
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedis(rdb goredis.Cmdable, limit int, window time.Duration, prefix string) *Redis {
	if window <= 0 {
		window = time.Minute
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = "chalkboard:ratelimit"
	}
	return &Redis{rdb: rdb, limit: limit, window: window, prefix: prefix, now: time.Now}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	slot := r.now().UnixNano() / int64(r.window)
	k := fmt.Sprintf("%s:%s:%d", r.prefix, key, slot)

	var incr *goredis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, r.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}
	return incr.Val() <= int64(r.limit), nil
}
