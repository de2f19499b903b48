package cache

import (
	"context"
	"time"
)

// LayeredCache reads memory first and falls back to Redis. Writes go to Redis
// first; a failed Redis write leaves memory untouched.
type LayeredCache struct {
	l1    *MemoryCache
	l2    *RedisCache
	l1TTL time.Duration
}

// NewLayeredCache puts a memory layer in front of rc. Closing it closes rc.
func NewLayeredCache(rc *RedisCache, cfg LayeredConfig) *LayeredCache {
	cfg = withDefaults(cfg)
	return &LayeredCache{
		l1:    NewMemoryCache(cfg.L1),
		l2:    rc,
		l1TTL: cfg.L1TTL,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if err := lc.l2.Set(ctx, key, data, expiration); err != nil {
		return err
	}
	lc.l1.setRaw(key, data, lc.memTTL(expiration))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if data, ok := lc.l1.getRaw(key); ok {
		return decode(data, dest)
	}
	var data []byte
	if err := lc.l2.Get(ctx, key, &data); err != nil {
		return err
	}
	lc.l1.setRaw(key, data, lc.l1TTL)
	return decode(data, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Close() error {
	_ = lc.l1.Close()
	return lc.l2.Close()
}

// memTTL keeps L1 entries from outliving their L2 copy.
func (lc *LayeredCache) memTTL(expiration time.Duration) time.Duration {
	if expiration > 0 && expiration < lc.l1TTL {
		return expiration
	}
	return lc.l1TTL
}
