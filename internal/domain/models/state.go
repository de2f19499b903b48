package models

import "time"

// Phase is the submission lifecycle state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseLoading    Phase = "loading"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// Snapshot is a consistent read-only view of a session for the presentation layer.
type Snapshot struct {
	SessionID  string
	Phase      Phase
	Error      string
	Instrument Instrument
	Range      DateRange
	Series     PredictionSeries
	Summary    SummaryMetrics
	UpdatedAt  time.Time
}

// SubmitEnabled mirrors the submit control: disabled while a request is in flight.
func (s Snapshot) SubmitEnabled() bool { return s.Phase != PhaseLoading }

// LifecycleEvent is emitted on every phase transition.
type LifecycleEvent struct {
	SessionID  string
	Instrument string
	Start      string
	End        string
	Phase      Phase
	Error      string
	Points     int
	At         time.Time
}
