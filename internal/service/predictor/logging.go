package predictor

import (
	"context"
	"errors"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/domain/service"
	applogger "StockDash/pkg/logger"
)

// loggingPredictor records every call. Failure causes are logged here and
// nowhere else.
type loggingPredictor struct {
	log  *applogger.Logger
	next service.Predictor
}

// NewLoggingPredictor wraps next with structured logging.
func NewLoggingPredictor(l *applogger.Logger, next service.Predictor) service.Predictor {
	return &loggingPredictor{log: l, next: next}
}

func (p *loggingPredictor) Predict(ctx context.Context, stock, start, end string) (out []models.RawPrediction, err error) {
	defer func(begin time.Time) {
		fields := []applogger.Field{
			applogger.String("stock", stock),
			applogger.String("start", start),
			applogger.String("end", end),
			applogger.Duration("elapsed_ms", time.Since(begin)),
		}
		if err != nil {
			cause := err
			if u := errors.Unwrap(err); u != nil {
				cause = u
			}
			p.log.Error("prediction failed", append(fields, applogger.Error(cause))...)
			return
		}
		p.log.Debug("prediction ok", append(fields, applogger.Int("points", len(out)))...)
	}(time.Now())
	return p.next.Predict(ctx, stock, start, end)
}
