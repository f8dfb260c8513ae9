package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter counts hits in Redis so limits hold across server instances.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr bumps the key and starts its expiry window on first hit. INCR and
// EXPIRE NX run in one pipeline so a crash between them cannot leave a key
// that never expires.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("increment rate limit key: %w", err)
	}
	return incr.Val(), time.Now().Add(ttl.Val()), nil
}

// MemoryCounter is a process-local Counter for tests and single-process mode.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]*memoryWindow)}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	win, ok := c.windows[key]
	if !ok || now.After(win.resetAt) {
		win = &memoryWindow{resetAt: now.Add(window)}
		c.windows[key] = win
	}
	win.count++
	return win.count, win.resetAt, nil
}
