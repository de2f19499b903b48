package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/domain/repository"
	"StockDash/internal/domain/service"
	applogger "StockDash/pkg/logger"
	"StockDash/pkg/metrics"
)

var (
	// ErrSubmissionInFlight is returned by Submit while a prediction is loading.
	ErrSubmissionInFlight = errors.New("a prediction request is already in flight")
	// ErrUnknownInstrument is returned when a key is not in the catalog.
	ErrUnknownInstrument = errors.New("unknown instrument")
	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// DefaultSuccessWindow is how long Success stays visible before reverting to Idle.
const DefaultSuccessWindow = 3 * time.Second

const subscriberBuffer = 8

// SessionDeps are the collaborators shared by every session.
type SessionDeps struct {
	Predictor     service.Predictor
	Transformer   *Transformer
	Catalog       repository.Catalog
	Events        repository.EventPublisher
	Metrics       repository.Metrics
	Logger        *applogger.Logger
	SuccessWindow time.Duration
}

// FormUpdate carries optional form edits. Nil fields are left unchanged.
type FormUpdate struct {
	Stock *string
	Start *string
	End   *string
}

// Session owns one submission lifecycle: the form, the phase, and the last
// good series with its summary. All methods are safe for concurrent use.
type Session struct {
	id   string
	deps SessionDeps
	log  *applogger.Logger

	mu         sync.Mutex
	phase      models.Phase
	errMsg     string
	instrument models.Instrument
	dates      models.DateRange
	series     models.PredictionSeries
	summary    models.SummaryMetrics
	updatedAt  time.Time
	gen        uint64
	revert     *time.Timer
	subs       map[int]chan models.Snapshot
	nextSub    int
	closed     bool
}

// NewSession creates an Idle session whose instrument is the catalog default.
func NewSession(id string, deps SessionDeps) *Session {
	if deps.SuccessWindow <= 0 {
		deps.SuccessWindow = DefaultSuccessWindow
	}
	if deps.Transformer == nil {
		deps.Transformer = NewTransformer(nil, ReferenceSynthetic)
	}
	if deps.Logger == nil {
		deps.Logger = applogger.Nop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	s := &Session{
		id:        id,
		deps:      deps,
		log:       deps.Logger.With(applogger.String("session_id", id)),
		phase:     models.PhaseIdle,
		updatedAt: time.Now(),
		subs:      make(map[int]chan models.Snapshot),
	}
	if deps.Catalog != nil {
		if inst, ok := deps.Catalog.Default(); ok {
			s.instrument = inst
		}
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SelectInstrument changes the selected instrument.
func (s *Session) SelectInstrument(key string) error {
	return s.UpdateForm(FormUpdate{Stock: &key})
}

// SetStart sets the start date as entered. Empty clears it.
func (s *Session) SetStart(date string) error {
	return s.UpdateForm(FormUpdate{Start: &date})
}

// SetEnd sets the end date as entered. Empty clears it.
func (s *Session) SetEnd(date string) error {
	return s.UpdateForm(FormUpdate{End: &date})
}

// UpdateForm applies edits atomically. Edits are accepted in every phase; an
// in-flight request keeps the values captured when it was submitted.
func (s *Session) UpdateForm(u FormUpdate) error {
	var inst models.Instrument
	if u.Stock != nil {
		var ok bool
		if s.deps.Catalog != nil {
			inst, ok = s.deps.Catalog.Lookup(*u.Stock)
		}
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownInstrument, *u.Stock)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if u.Stock != nil {
		s.instrument = inst
	}
	if u.Start != nil {
		s.dates.Start = *u.Start
	}
	if u.End != nil {
		s.dates.End = *u.End
	}
	s.updatedAt = time.Now()
	s.broadcastLocked()
	return nil
}

// Busy reports whether a prediction is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == models.PhaseLoading
}

// Submit runs one lifecycle: Validating, then Error or Loading, then Success
// or Error. It blocks until the prediction resolves and returns the resulting
// snapshot. The error is ErrSubmissionInFlight when another submission is
// loading (state unchanged), a *ValidationError, the predictor's error, or
// ErrSessionClosed when the session was closed while loading.
func (s *Session) Submit(ctx context.Context) (models.Snapshot, error) {
	begin := time.Now()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Snapshot{}, ErrSessionClosed
	}
	if s.phase == models.PhaseLoading {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrSubmissionInFlight
	}
	s.stopRevertLocked()
	events := []models.LifecycleEvent{s.transitionLocked(models.PhaseValidating, "")}

	inst, dates := s.instrument, s.dates
	if err := ValidateDateRange(dates); err != nil {
		events = append(events, s.transitionLocked(models.PhaseError, err.Error()))
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.publish(events)
		s.deps.Metrics.RecordError("validation")
		return snap, err
	}
	events = append(events, s.transitionLocked(models.PhaseLoading, ""))
	s.mu.Unlock()
	s.publish(events)

	raw, err := s.deps.Predictor.Predict(ctx, inst.Key, dates.Start, dates.End)
	var series models.PredictionSeries
	var summary models.SummaryMetrics
	if err == nil {
		series = s.deps.Transformer.Transform(raw)
		summary = Summarize(series)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Snapshot{}, ErrSessionClosed
	}
	var evt models.LifecycleEvent
	if err != nil {
		evt = s.transitionLocked(models.PhaseError, failureMessage(err))
	} else {
		s.series, s.summary = series, summary
		evt = s.transitionLocked(models.PhaseSuccess, "")
		s.armRevertLocked()
		s.deps.Metrics.RecordPoints(inst.Key, series.Len())
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	// Report the form as submitted, not as edited while loading.
	evt.Instrument, evt.Start, evt.End = inst.Key, dates.Start, dates.End
	s.publish([]models.LifecycleEvent{evt})
	s.deps.Metrics.RecordLatency("submit", time.Since(begin))
	return snap, err
}

// Snapshot returns a consistent copy of the current state.
func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that first yields the current snapshot and then
// every later change. Slow readers only lose intermediate snapshots, never the
// latest. The cancel func is idempotent and closes the channel.
func (s *Session) Subscribe() (<-chan models.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan models.Snapshot, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close stops the success timer and closes every subscriber channel.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopRevertLocked()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) transitionLocked(to models.Phase, msg string) models.LifecycleEvent {
	from := s.phase
	s.phase = to
	s.errMsg = msg
	s.gen++
	s.updatedAt = time.Now()

	s.log.Debug("session transition",
		applogger.String("from", string(from)),
		applogger.String("to", string(to)),
		applogger.String("stock", s.instrument.Key),
	)
	s.deps.Metrics.RecordTransition(to)
	s.broadcastLocked()

	return models.LifecycleEvent{
		SessionID:  s.id,
		Instrument: s.instrument.Key,
		Start:      s.dates.Start,
		End:        s.dates.End,
		Phase:      to,
		Error:      msg,
		Points:     s.series.Len(),
		At:         s.updatedAt,
	}
}

// armRevertLocked schedules Success -> Idle. Any later transition bumps gen,
// which turns a pending callback into a no-op.
func (s *Session) armRevertLocked() {
	gen := s.gen
	s.revert = time.AfterFunc(s.deps.SuccessWindow, func() { s.expireSuccess(gen) })
}

func (s *Session) stopRevertLocked() {
	if s.revert != nil {
		s.revert.Stop()
		s.revert = nil
	}
}

func (s *Session) expireSuccess(gen uint64) {
	s.mu.Lock()
	if s.closed || s.gen != gen || s.phase != models.PhaseSuccess {
		s.mu.Unlock()
		return
	}
	s.revert = nil
	evt := s.transitionLocked(models.PhaseIdle, "")
	s.mu.Unlock()
	s.publish([]models.LifecycleEvent{evt})
}

func (s *Session) snapshotLocked() models.Snapshot {
	points := make([]models.PredictionPoint, len(s.series.Points))
	copy(points, s.series.Points)
	return models.Snapshot{
		SessionID:  s.id,
		Phase:      s.phase,
		Error:      s.errMsg,
		Instrument: s.instrument,
		Range:      s.dates,
		Series:     models.PredictionSeries{Points: points, SyntheticReference: s.series.SyntheticReference},
		Summary:    s.summary,
		UpdatedAt:  s.updatedAt,
	}
}

func (s *Session) broadcastLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// drop the oldest queued snapshot to make room for the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// publish ships events outside the session lock. Failures are logged only.
func (s *Session) publish(events []models.LifecycleEvent) {
	if s.deps.Events == nil {
		return
	}
	for _, evt := range events {
		if err := s.deps.Events.Publish(context.Background(), evt); err != nil {
			s.deps.Metrics.RecordError("event_publish")
			s.log.Warn("lifecycle event publish failed",
				applogger.String("phase", string(evt.Phase)),
				applogger.Error(err),
			)
		}
	}
}

// failureMessage keeps any cause out of the user-facing text.
func failureMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return service.PredictionFailureMessage
}
