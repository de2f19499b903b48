package models

import "math"

// RawPrediction is one record of the prediction service response, untouched.
type RawPrediction struct {
	Date           string
	PredictedClose float64
}

// PredictionPoint is a chart-ready sample.
// Reference is a synthetic comparison price, not ground truth.
type PredictionPoint struct {
	Date      string
	Predicted float64
	Reference float64
}

// PredictionSeries keeps server response order.
type PredictionSeries struct {
	Points []PredictionPoint
	// SyntheticReference is true when Reference values were generated randomly around Predicted.
	SyntheticReference bool
}

// Len returns the number of points.
func (s PredictionSeries) Len() int { return len(s.Points) }

// IsEmpty reports whether no prediction has been loaded.
func (s PredictionSeries) IsEmpty() bool { return len(s.Points) == 0 }

// SummaryMetrics is a projection of a PredictionSeries.
// First, Last and Average are nil for an empty series. ChangePercent is NaN when the opening price is not positive.
type SummaryMetrics struct {
	First         *float64
	Last          *float64
	Change        float64
	ChangePercent float64
	IsPositive    bool

	FirstDate string
	LastDate  string
	Average   *float64
}

// PercentDefined reports whether ChangePercent can be displayed as a number.
func (m SummaryMetrics) PercentDefined() bool { return !math.IsNaN(m.ChangePercent) }
