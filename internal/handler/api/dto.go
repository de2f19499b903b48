package api

import (
	"time"

	"StockDash/internal/domain/models"
)

// InstrumentResponse is one catalog entry.
type InstrumentResponse struct {
	Key  string `json:"key" example:"ADANI_PORTS.csv"`
	Name string `json:"name" example:"ADANI PORTS"`
}

// UpdateFormRequest edits the session form. Omitted fields are unchanged; an
// empty string clears a date.
type UpdateFormRequest struct {
	Stock *string `json:"stock" validate:"omitempty,min=1,max=128"`
	Start *string `json:"start" validate:"omitempty,max=32"`
	End   *string `json:"end" validate:"omitempty,max=32"`
}

// SnapshotResponse is the read-only session view rendered by the dashboard.
type SnapshotResponse struct {
	SessionID     string          `json:"session_id"`
	Phase         string          `json:"phase" example:"success"`
	Error         string          `json:"error,omitempty"`
	SubmitEnabled bool            `json:"submit_enabled"`
	Form          FormResponse    `json:"form"`
	Series        SeriesResponse  `json:"series"`
	Summary       SummaryResponse `json:"summary"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type FormResponse struct {
	Stock     string `json:"stock"`
	StockName string `json:"stock_name"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

type SeriesResponse struct {
	Points []PointResponse `json:"points"`
	// SyntheticReference marks the reference column as randomly generated, not observed prices.
	SyntheticReference bool `json:"synthetic_reference"`
}

type PointResponse struct {
	Date      string   `json:"date"`
	Predicted float64  `json:"predicted"`
	Reference *float64 `json:"reference,omitempty"`
}

type SummaryResponse struct {
	First         *float64       `json:"first"`
	Last          *float64       `json:"last"`
	Change        float64        `json:"change"`
	ChangePercent *float64       `json:"change_percent"`
	IsPositive    bool           `json:"is_positive"`
	FirstDate     string         `json:"first_date,omitempty"`
	LastDate      string         `json:"last_date,omitempty"`
	Average       *float64       `json:"average"`
	Display       SummaryDisplay `json:"display"`
}

// SummaryDisplay holds the summary pre-rendered for the stat cards.
type SummaryDisplay struct {
	First         string `json:"first"`
	Last          string `json:"last"`
	Change        string `json:"change"`
	ChangePercent string `json:"change_percent"`
	Average       string `json:"average"`
}

func toInstrumentResponses(items []models.Instrument) []InstrumentResponse {
	out := make([]InstrumentResponse, len(items))
	for i, it := range items {
		out[i] = InstrumentResponse{Key: it.Key, Name: it.Name}
	}
	return out
}

func (f Formatter) toSnapshotResponse(s models.Snapshot) SnapshotResponse {
	points := make([]PointResponse, len(s.Series.Points))
	for i, p := range s.Series.Points {
		points[i] = PointResponse{Date: p.Date, Predicted: p.Predicted}
		if s.Series.SyntheticReference {
			ref := p.Reference
			points[i].Reference = &ref
		}
	}

	sum := s.Summary
	var pct *float64
	if sum.PercentDefined() {
		v := sum.ChangePercent
		pct = &v
	}

	return SnapshotResponse{
		SessionID:     s.SessionID,
		Phase:         string(s.Phase),
		Error:         s.Error,
		SubmitEnabled: s.SubmitEnabled(),
		Form: FormResponse{
			Stock:     s.Instrument.Key,
			StockName: s.Instrument.Name,
			Start:     s.Range.Start,
			End:       s.Range.End,
		},
		Series: SeriesResponse{Points: points, SyntheticReference: s.Series.SyntheticReference},
		Summary: SummaryResponse{
			First:         sum.First,
			Last:          sum.Last,
			Change:        sum.Change,
			ChangePercent: pct,
			IsPositive:    sum.IsPositive,
			FirstDate:     sum.FirstDate,
			LastDate:      sum.LastDate,
			Average:       sum.Average,
			Display: SummaryDisplay{
				First:         f.Price(sum.First),
				Last:          f.Price(sum.Last),
				Change:        f.Change(sum.Change, sum.IsPositive),
				ChangePercent: f.Percent(sum.ChangePercent, sum.IsPositive),
				Average:       f.Price(sum.Average),
			},
		},
		UpdatedAt: s.UpdatedAt,
	}
}
