package predictor

import (
	"context"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/domain/repository"
	"StockDash/internal/domain/service"
)

type instrumentingPredictor struct {
	metrics repository.Metrics
	next    service.Predictor
}

// NewInstrumentingPredictor wraps next with outcome and latency metrics.
func NewInstrumentingPredictor(m repository.Metrics, next service.Predictor) service.Predictor {
	return &instrumentingPredictor{metrics: m, next: next}
}

func (p *instrumentingPredictor) Predict(ctx context.Context, stock, start, end string) (out []models.RawPrediction, err error) {
	defer func(begin time.Time) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			p.metrics.RecordError("prediction")
		}
		p.metrics.RecordPrediction(stock, outcome)
		p.metrics.RecordPredictionLatency(time.Since(begin).Seconds())
	}(time.Now())
	return p.next.Predict(ctx, stock, start, end)
}
