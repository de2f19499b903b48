package repository

import (
	"context"
	"time"

	"StockDash/internal/domain/models"
)

// Catalog exposes the enumerated set of instruments.
type Catalog interface {
	List() []models.Instrument
	Lookup(key string) (models.Instrument, bool)
	Default() (models.Instrument, bool)
}

// EventPublisher ships lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, evt models.LifecycleEvent) error
	Close() error
}

type Metrics interface {
	RecordPrediction(stock, outcome string)
	RecordPredictionLatency(seconds float64)
	RecordPoints(stock string, n int)
	RecordTransition(phase models.Phase)
	RecordError(kind string)
	RecordLatency(op string, d time.Duration)
}
