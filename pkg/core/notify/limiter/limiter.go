// Package limiter provides fixed-window rate limiters, used for outbound
// mail and login attempts.
package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/labinv/pkg/common/code"
)

type Limiter interface {
	// Allow counts one event for key and reports whether it fits in the
	// current window.
	Allow(ctx context.Context, key string) (bool, error)
}

type redisLimiter struct {
	client *r.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedis shares counters between instances through redis.
func NewRedis(client *r.Client, prefix string, limit int, window time.Duration) Limiter {
	return &redisLimiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 || l.window <= 0 {
		return true, nil
	}
	slot := l.now().UnixNano() / int64(l.window)
	k := l.prefix + key + ":" + time.Unix(0, slot*int64(l.window)).UTC().Format(time.RFC3339)

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, code.NotificationErr.WithErr(err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, code.NotificationErr.WithErr(err)
		}
	}
	return n <= l.limit, nil
}

type window struct {
	mu    sync.Mutex
	start time.Time
	count int64
}

type memoryLimiter struct {
	counters  *haxmap.Map[string, *window]
	limit     int64
	window    time.Duration
	now       func() time.Time
	sweepMu   sync.Mutex
	lastSweep time.Time
}

// NewMemory keeps counters in process. A window resets lazily on the first
// check after it expires, and expired keys are dropped at most once per
// window.
func NewMemory(limit int, window time.Duration) Limiter {
	return newMemory(limit, window, time.Now)
}

func newMemory(limit int, w time.Duration, now func() time.Time) *memoryLimiter {
	return &memoryLimiter{
		counters: haxmap.New[string, *window](),
		limit:    int64(limit),
		window:   w,
		now:      now,
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.limit <= 0 || l.window <= 0 {
		return true, nil
	}
	now := l.now()
	l.sweep(now)
	w, _ := l.counters.GetOrSet(key, &window{start: now})

	w.mu.Lock()
	defer w.mu.Unlock()
	if now.Sub(w.start) >= l.window {
		w.start = now
		w.count = 0
	}
	w.count++
	return w.count <= l.limit, nil
}

func (l *memoryLimiter) sweep(now time.Time) {
	l.sweepMu.Lock()
	if now.Sub(l.lastSweep) < l.window {
		l.sweepMu.Unlock()
		return
	}
	l.lastSweep = now
	l.sweepMu.Unlock()

	var expired []string
	l.counters.ForEach(func(key string, w *window) bool {
		w.mu.Lock()
		if now.Sub(w.start) >= l.window {
			expired = append(expired, key)
		}
		w.mu.Unlock()
		return true
	})
	for _, key := range expired {
		l.counters.Del(key)
	}
}
