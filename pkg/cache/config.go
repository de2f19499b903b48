package cache

import (
	"time"

	"github.com/creasty/defaults"
)

// MemoryConfig sizes an in-process cache. Zero fields take the tag defaults.
type MemoryConfig struct {
	MaxEntries      int           `default:"1000"`
	DefaultTTL      time.Duration `default:"24h"`
	CleanupInterval time.Duration `default:"5m"`
}

// RedisConfig points at a Redis server. Zero fields take the tag defaults.
type RedisConfig struct {
	Addr         string `default:"localhost:6379"`
	Password     string
	DB           int
	Prefix       string        `default:"stockdash"`
	PoolSize     int           `default:"10"`
	MinIdleConns int           `default:"2"`
	DialTimeout  time.Duration `default:"5s"`
	ReadTimeout  time.Duration `default:"2s"`
	WriteTimeout time.Duration `default:"2s"`
}

// LayeredConfig sizes the memory layer kept in front of Redis.
type LayeredConfig struct {
	L1 MemoryConfig
	// L1TTL caps how long an entry stays in memory before Redis is asked again.
	L1TTL time.Duration `default:"1m"`
}

func withDefaults[T any](cfg T) T {
	// Tags are constant; Set only fails on malformed tags.
	_ = defaults.Set(&cfg)
	return cfg
}
