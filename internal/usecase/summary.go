package usecase

import (
	"math"

	"StockDash/internal/domain/models"
)

// Summarize derives summary statistics from a series. It is pure; an empty
// series yields zero change and no prices, and a non-positive opening price
// yields a NaN percentage.
func Summarize(s models.PredictionSeries) models.SummaryMetrics {
	if s.IsEmpty() {
		return models.SummaryMetrics{}
	}

	firstPt, lastPt := s.Points[0], s.Points[len(s.Points)-1]
	first, last := firstPt.Predicted, lastPt.Predicted
	change := last - first

	pct := math.NaN()
	if first > 0 {
		pct = change / first * 100
	}

	var sum float64
	for _, p := range s.Points {
		sum += p.Predicted
	}
	avg := sum / float64(len(s.Points))

	return models.SummaryMetrics{
		First:         &first,
		Last:          &last,
		Change:        change,
		ChangePercent: pct,
		IsPositive:    change >= 0,
		FirstDate:     firstPt.Date,
		LastDate:      lastPt.Date,
		Average:       &avg,
	}
}
