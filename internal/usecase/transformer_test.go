package usecase

import (
	"fmt"
	"testing"

	"StockDash/internal/domain/models"
)

// fixedRand returns the same draw every time.
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func rawSeries(n int) []models.RawPrediction {
	out := make([]models.RawPrediction, n)
	for i := range out {
		out[i] = models.RawPrediction{
			Date:           fmt.Sprintf("2024-01-%02d", i+1),
			PredictedClose: 100 + float64(i)*1.37,
		}
	}
	return out
}

func TestTransformPreservesOrderAndPredicted(t *testing.T) {
	raw := []models.RawPrediction{
		{Date: "2024-01-03", PredictedClose: 3},
		{Date: "2024-01-01", PredictedClose: 1.25},
		{Date: "2024-01-02", PredictedClose: 0},
	}
	s := NewTransformer(NewRand(42), ReferenceSynthetic).Transform(raw)

	if s.Len() != len(raw) {
		t.Fatalf("len = %d", s.Len())
	}
	for i, p := range s.Points {
		if p.Date != raw[i].Date || p.Predicted != raw[i].PredictedClose {
			t.Fatalf("point %d = %+v, raw %+v", i, p, raw[i])
		}
	}
	if !s.SyntheticReference {
		t.Fatalf("series must be flagged synthetic")
	}
}

func TestTransformReferenceWithinBounds(t *testing.T) {
	tr := NewTransformer(NewRand(7), ReferenceSynthetic)
	for pass := 0; pass < 20; pass++ {
		for _, p := range tr.Transform(rawSeries(250)).Points {
			if p.Reference < MinReferenceRatio*p.Predicted || p.Reference > MaxReferenceRatio*p.Predicted {
				t.Fatalf("reference %v outside bounds for predicted %v", p.Reference, p.Predicted)
			}
		}
	}
}

func TestTransformReferenceBoundsAtExtremes(t *testing.T) {
	raw := []models.RawPrediction{{Date: "d", PredictedClose: 200}}

	lo := NewTransformer(fixedRand(0), ReferenceSynthetic).Transform(raw).Points[0]
	if lo.Reference < 0.97*200 || lo.Reference > 0.97*200+1e-9 {
		t.Fatalf("low draw gave %v", lo.Reference)
	}
	// a misbehaving source is clamped
	hi := NewTransformer(fixedRand(5), ReferenceSynthetic).Transform(raw).Points[0]
	if hi.Reference > 1.03*200 {
		t.Fatalf("high draw gave %v", hi.Reference)
	}
}

func TestTransformRegeneratesReference(t *testing.T) {
	tr := NewTransformer(NewRand(99), ReferenceSynthetic)
	raw := rawSeries(30)
	a, b := tr.Transform(raw), tr.Transform(raw)

	differs := false
	for i := range a.Points {
		if a.Points[i].Predicted != b.Points[i].Predicted {
			t.Fatalf("predicted must be stable")
		}
		if a.Points[i].Reference != b.Points[i].Reference {
			differs = true
		}
	}
	if !differs {
		t.Fatalf("reference column should be redrawn on each pass")
	}
}

func TestTransformSeedIsReproducible(t *testing.T) {
	raw := rawSeries(10)
	a := NewTransformer(NewRand(1234), ReferenceSynthetic).Transform(raw)
	b := NewTransformer(NewRand(1234), ReferenceSynthetic).Transform(raw)
	for i := range a.Points {
		if a.Points[i].Reference != b.Points[i].Reference {
			t.Fatalf("same seed must give same references")
		}
	}
}

func TestTransformEmpty(t *testing.T) {
	s := NewTransformer(nil, "").Transform(nil)
	if !s.IsEmpty() {
		t.Fatalf("expected empty series")
	}
}

func TestTransformOmitMode(t *testing.T) {
	s := NewTransformer(NewRand(1), ReferenceOmit).Transform(rawSeries(3))
	if s.SyntheticReference {
		t.Fatalf("omit mode must not flag synthetic data")
	}
	for _, p := range s.Points {
		if p.Reference != 0 {
			t.Fatalf("reference should be unset, got %v", p.Reference)
		}
	}
}

func TestParseReferenceMode(t *testing.T) {
	if m, err := ParseReferenceMode(""); err != nil || m != ReferenceSynthetic {
		t.Fatalf("empty: %v %v", m, err)
	}
	if m, err := ParseReferenceMode("omit"); err != nil || m != ReferenceOmit {
		t.Fatalf("omit: %v %v", m, err)
	}
	if _, err := ParseReferenceMode("real"); err == nil {
		t.Fatalf("expected error")
	}
}
