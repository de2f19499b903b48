package metrics

import (
	"time"

	"StockDash/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	points            *prometheus.GaugeVec
	transitions       *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	latency           *prometheus.HistogramVec
}

// New creates a Recorder registered with reg. A nil reg uses the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_predictions_total",
				Help: "Prediction requests by instrument and outcome",
			},
			[]string{"stock", "outcome"},
		),
		predictionLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockdash_prediction_duration_seconds",
				Help:    "Round trip time to the prediction service",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		points: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockdash_prediction_points",
				Help: "Number of points in the last successful prediction per instrument",
			},
			[]string{"stock"},
		),
		transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_session_transitions_total",
				Help: "Session phase transitions by target phase",
			},
			[]string{"phase"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockdash_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction counts a prediction outcome ("ok", "error", "cached").
func (r *Recorder) RecordPrediction(stock, outcome string) {
	r.predictions.WithLabelValues(stock, outcome).Inc()
}

// RecordPredictionLatency records prediction service latency in seconds.
func (r *Recorder) RecordPredictionLatency(seconds float64) {
	r.predictionLatency.Observe(seconds)
}

// RecordPoints records the size of the last loaded series.
func (r *Recorder) RecordPoints(stock string, n int) {
	r.points.WithLabelValues(stock).Set(float64(n))
}

// RecordTransition counts a session phase change.
func (r *Recorder) RecordTransition(phase models.Phase) {
	r.transitions.WithLabelValues(string(phase)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency.
func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordPrediction(string, string)     {}
func (Nop) RecordPredictionLatency(float64)     {}
func (Nop) RecordPoints(string, int)            {}
func (Nop) RecordTransition(models.Phase)       {}
func (Nop) RecordError(string)                  {}
func (Nop) RecordLatency(string, time.Duration) {}
