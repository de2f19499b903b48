package service

import (
	"context"

	"StockDash/internal/domain/models"
)

// Predictor requests a price forecast for one instrument over a date range.
type Predictor interface {
	Predict(ctx context.Context, stock, start, end string) ([]models.RawPrediction, error)
}

// PredictionFailureMessage is the only text ever shown for a failed prediction.
// Causes are kept for diagnostics and never surfaced.
const PredictionFailureMessage = "Failed to fetch prediction. Please try again."
