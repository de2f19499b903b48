package predictor

import (
	"context"
	"errors"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/domain/service"
	"StockDash/pkg/cache"
	applogger "StockDash/pkg/logger"
)

const cachePrefix = "predict"

// CachingPredictor serves repeated (stock, start, end) requests from a cache.
// Only successful responses are stored. Cache failures degrade to a direct call.
type CachingPredictor struct {
	cache cache.Service
	ttl   time.Duration
	log   *applogger.Logger
	next  service.Predictor
}

// NewCachingPredictor returns next unchanged when c is nil or ttl is not positive.
func NewCachingPredictor(c cache.Service, ttl time.Duration, l *applogger.Logger, next service.Predictor) service.Predictor {
	if c == nil || ttl <= 0 {
		return next
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CachingPredictor{cache: c, ttl: ttl, log: l, next: next}
}

func (p *CachingPredictor) Predict(ctx context.Context, stock, start, end string) ([]models.RawPrediction, error) {
	key := cacheKey(stock, start, end)

	var hit []models.RawPrediction
	err := p.cache.Get(ctx, key, &hit)
	switch {
	case err == nil:
		p.log.Debug("prediction cache hit", applogger.String("stock", stock))
		return hit, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		p.log.Warn("prediction cache read failed", applogger.Error(err))
		// An undecodable entry would fail every read until it expires.
		_ = p.cache.Delete(ctx, key)
	}

	out, err := p.next.Predict(ctx, stock, start, end)
	if err != nil {
		return nil, err
	}
	if err := p.cache.Set(ctx, key, out, p.ttl); err != nil {
		p.log.Warn("prediction cache write failed", applogger.Error(err))
	}
	return out, nil
}

// cacheKey hashes the instrument key, which may contain spaces.
func cacheKey(stock, start, end string) string {
	return cache.Key(cachePrefix, cache.HashKey(stock), start, end)
}
