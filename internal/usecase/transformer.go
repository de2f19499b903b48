package usecase

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"StockDash/internal/domain/models"
)

// Reference ratio bounds for the synthetic comparison line.
const (
	MinReferenceRatio = 0.97
	MaxReferenceRatio = 1.03
)

// ReferenceMode selects how the comparison column is produced.
type ReferenceMode string

const (
	// ReferenceSynthetic fills Reference with predicted × U[0.97, 1.03].
	ReferenceSynthetic ReferenceMode = "synthetic"
	// ReferenceOmit leaves Reference unset.
	ReferenceOmit ReferenceMode = "omit"
)

// ParseReferenceMode validates a configured mode.
func ParseReferenceMode(s string) (ReferenceMode, error) {
	switch m := ReferenceMode(s); m {
	case ReferenceSynthetic, ReferenceOmit:
		return m, nil
	case "":
		return ReferenceSynthetic, nil
	default:
		return "", fmt.Errorf("unknown reference mode %q", s)
	}
}

// Rand is the random source for reference ratios. Float64 returns a value in [0, 1).
type Rand interface {
	Float64() float64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// NewRand returns a goroutine-safe PCG source. A zero seed picks a random one.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Transformer turns raw service records into a chart-ready series.
type Transformer struct {
	rnd  Rand
	mode ReferenceMode
}

// NewTransformer builds a Transformer. A nil rnd gets a randomly seeded source.
func NewTransformer(rnd Rand, mode ReferenceMode) *Transformer {
	if rnd == nil {
		rnd = NewRand(0)
	}
	if mode == "" {
		mode = ReferenceSynthetic
	}
	return &Transformer{rnd: rnd, mode: mode}
}

// Mode returns the configured reference mode.
func (t *Transformer) Mode() ReferenceMode { return t.mode }

// Transform keeps input order and copies dates and prices verbatim. In
// synthetic mode every call draws fresh reference values.
func (t *Transformer) Transform(raw []models.RawPrediction) models.PredictionSeries {
	series := models.PredictionSeries{
		Points:             make([]models.PredictionPoint, len(raw)),
		SyntheticReference: t.mode == ReferenceSynthetic,
	}
	for i, r := range raw {
		p := models.PredictionPoint{Date: r.Date, Predicted: r.PredictedClose}
		if series.SyntheticReference {
			p.Reference = r.PredictedClose * t.ratio()
		}
		series.Points[i] = p
	}
	return series
}

func (t *Transformer) ratio() float64 {
	r := MinReferenceRatio + t.rnd.Float64()*(MaxReferenceRatio-MinReferenceRatio)
	return min(max(r, MinReferenceRatio), MaxReferenceRatio)
}
