package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockDash/internal/catalog"
	"StockDash/internal/domain/models"
)

type predictCall struct {
	stock, start, end string
}

type fakePredictor struct {
	mu      sync.Mutex
	calls   []predictCall
	out     []models.RawPrediction
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakePredictor) Predict(ctx context.Context, stock, start, end string) ([]models.RawPrediction, error) {
	f.mu.Lock()
	f.calls = append(f.calls, predictCall{stock, start, end})
	out, err, gate, entered := f.out, f.err, f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return out, err
}

func (f *fakePredictor) set(out []models.RawPrediction, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out, f.err = out, err
}

func (f *fakePredictor) block() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	f.entered = make(chan struct{}, 1)
	gate := f.gate
	return func() { close(gate) }
}

func (f *fakePredictor) waitEntered(t *testing.T) {
	t.Helper()
	f.mu.Lock()
	entered := f.entered
	f.mu.Unlock()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("predictor was not called")
	}
}

func (f *fakePredictor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingEvents struct {
	mu     sync.Mutex
	events []models.LifecycleEvent
}

func (r *recordingEvents) Publish(_ context.Context, evt models.LifecycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingEvents) Close() error { return nil }

func (r *recordingEvents) phases() []models.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Phase, len(r.events))
	for i, e := range r.events {
		out[i] = e.Phase
	}
	return out
}

var scenarioRaw = []models.RawPrediction{
	{Date: "2024-01-01", PredictedClose: 100},
	{Date: "2024-01-02", PredictedClose: 110},
}

func newTestSession(t *testing.T, p *fakePredictor, window time.Duration) (*Session, *recordingEvents) {
	t.Helper()
	cat, err := catalog.New([]string{"ADANI_PORTS.csv", "ITC.csv"})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	ev := &recordingEvents{}
	s := NewSession("s-1", SessionDeps{
		Predictor:     p,
		Transformer:   NewTransformer(NewRand(5), ReferenceSynthetic),
		Catalog:       cat,
		Events:        ev,
		SuccessWindow: window,
	})
	t.Cleanup(s.Close)
	return s, ev
}

func fillDates(t *testing.T, s *Session) {
	t.Helper()
	if err := s.SetStart("2024-01-01"); err != nil {
		t.Fatalf("set start: %v", err)
	}
	if err := s.SetEnd("2024-01-31"); err != nil {
		t.Fatalf("set end: %v", err)
	}
}

func TestNewSessionDefaults(t *testing.T) {
	s, _ := newTestSession(t, &fakePredictor{}, time.Second)
	snap := s.Snapshot()
	if snap.Phase != models.PhaseIdle || snap.Error != "" {
		t.Fatalf("initial phase = %s %q", snap.Phase, snap.Error)
	}
	if snap.Instrument.Key != "ADANI_PORTS.csv" || snap.Instrument.Name != "ADANI PORTS" {
		t.Fatalf("default instrument = %+v", snap.Instrument)
	}
	if snap.Range.Start != "" || snap.Range.End != "" || !snap.Series.IsEmpty() {
		t.Fatalf("form and series should start empty")
	}
	if !snap.SubmitEnabled() {
		t.Fatalf("submit should be enabled when idle")
	}
}

func TestSelectUnknownInstrument(t *testing.T) {
	s, _ := newTestSession(t, &fakePredictor{}, time.Second)
	if err := s.SelectInstrument("NOPE.csv"); !errors.Is(err, ErrUnknownInstrument) {
		t.Fatalf("expected ErrUnknownInstrument, got %v", err)
	}
	if err := s.SelectInstrument("ITC.csv"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := s.Snapshot().Instrument.Key; got != "ITC.csv" {
		t.Fatalf("instrument = %q", got)
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	p := &fakePredictor{}
	s, ev := newTestSession(t, p, time.Second)
	_ = s.SetEnd("2024-01-01")

	snap, err := s.Submit(context.Background())
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if snap.Phase != models.PhaseError || snap.Error != MissingDatesMessage {
		t.Fatalf("snapshot = %s %q", snap.Phase, snap.Error)
	}
	if p.callCount() != 0 {
		t.Fatalf("predictor must not be called")
	}
	want := []models.Phase{models.PhaseValidating, models.PhaseError}
	if got := ev.phases(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %v", got)
	}
}

func TestSubmitSuccess(t *testing.T) {
	p := &fakePredictor{out: scenarioRaw}
	s, ev := newTestSession(t, p, time.Second)
	_ = s.SelectInstrument("ITC.csv")
	fillDates(t, s)

	snap, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.Phase != models.PhaseSuccess || snap.Error != "" {
		t.Fatalf("snapshot = %s %q", snap.Phase, snap.Error)
	}
	if snap.Series.Len() != 2 || snap.Series.Points[1].Predicted != 110 {
		t.Fatalf("series = %+v", snap.Series)
	}
	sum := snap.Summary
	if *sum.First != 100 || *sum.Last != 110 || sum.Change != 10 || !sum.IsPositive {
		t.Fatalf("summary = %+v", sum)
	}
	if got := p.calls[0]; got != (predictCall{"ITC.csv", "2024-01-01", "2024-01-31"}) {
		t.Fatalf("predictor called with %+v", got)
	}
	want := []models.Phase{models.PhaseValidating, models.PhaseLoading, models.PhaseSuccess}
	got := ev.phases()
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v", got)
		}
	}
}

func TestTransportErrorKeepsLastGoodSeries(t *testing.T) {
	p := &fakePredictor{out: scenarioRaw}
	s, _ := newTestSession(t, p, time.Minute)
	fillDates(t, s)

	first, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	p.set(nil, errors.New("dial tcp 127.0.0.1:5000: connection refused"))
	snap, err := s.Submit(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if snap.Phase != models.PhaseError {
		t.Fatalf("phase = %s", snap.Phase)
	}
	if snap.Error != "Failed to fetch prediction. Please try again." {
		t.Fatalf("cause leaked into message: %q", snap.Error)
	}
	if snap.Series.Len() != first.Series.Len() {
		t.Fatalf("series cleared")
	}
	for i := range snap.Series.Points {
		if snap.Series.Points[i] != first.Series.Points[i] {
			t.Fatalf("series changed at %d", i)
		}
	}
	if *snap.Summary.Last != 110 {
		t.Fatalf("summary changed")
	}
}

func TestSubmitWhileLoadingIsRejected(t *testing.T) {
	p := &fakePredictor{out: scenarioRaw}
	s, _ := newTestSession(t, p, time.Minute)
	fillDates(t, s)
	release := p.block()

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()
	p.waitEntered(t)

	if !s.Busy() || s.Snapshot().SubmitEnabled() {
		t.Fatalf("session should be loading with submit disabled")
	}
	snap, err := s.Submit(context.Background())
	if !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	if snap.Phase != models.PhaseLoading {
		t.Fatalf("rejected submit must not change state, phase = %s", snap.Phase)
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if p.callCount() != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", p.callCount())
	}
	if s.Snapshot().Phase != models.PhaseSuccess {
		t.Fatalf("phase = %s", s.Snapshot().Phase)
	}
}

func TestFormEditsDuringLoadingDoNotAffectRequest(t *testing.T) {
	p := &fakePredictor{out: scenarioRaw}
	s, _ := newTestSession(t, p, time.Minute)
	fillDates(t, s)
	release := p.block()

	done := make(chan struct{})
	go func() {
		_, _ = s.Submit(context.Background())
		close(done)
	}()
	p.waitEntered(t)

	_ = s.SetStart("")
	_ = s.SelectInstrument("ITC.csv")
	release()
	<-done

	if got := p.calls[0]; got.stock != "ADANI_PORTS.csv" || got.start != "2024-01-01" {
		t.Fatalf("request used edited form: %+v", got)
	}
	if snap := s.Snapshot(); snap.Range.Start != "" || snap.Instrument.Key != "ITC.csv" {
		t.Fatalf("form edits lost: %+v", snap.Range)
	}
}

func waitPhase(t *testing.T, ch <-chan models.Snapshot, want models.Phase, within time.Duration) models.Snapshot {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				t.Fatalf("subscription closed before %s", want)
			}
			if snap.Phase == want {
				return snap
			}
		case <-deadline:
			t.Fatalf("phase %s not reached within %s", want, within)
		}
	}
}

func TestSuccessRevertsToIdleAndKeepsData(t *testing.T) {
	p := &fakePredictor{out: scenarioRaw}
	s, ev := newTestSession(t, p, 30*time.Millisecond)
	fillDates(t, s)

	ch, cancel := s.Subscribe()
	defer cancel()

	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first := <-ch; first.Phase != models.PhaseIdle || first.Series.Len() != 0 {
		t.Fatalf("first snapshot = %+v", first)
	}
	waitPhase(t, ch, models.PhaseSuccess, 2*time.Second)
	idle := waitPhase(t, ch, models.PhaseIdle, 2*time.Second)
	if idle.Series.Len() != 2 || idle.Summary.First == nil {
		t.Fatalf("data must stay visible after the success window")
	}

	// The event is published after the snapshot is broadcast.
	deadline := time.Now().Add(time.Second)
	for {
		phases := ev.phases()
		if phases[len(phases)-1] == models.PhaseIdle {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("last event = %v", phases)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewSubmissionSupersedesSuccessTimer(t *testing.T) {
	p := &fakePredictor{out: scenarioRaw}
	s, _ := newTestSession(t, p, 80*time.Millisecond)
	fillDates(t, s)

	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	release := p.block()
	done := make(chan struct{})
	go func() {
		_, _ = s.Submit(context.Background())
		close(done)
	}()
	p.waitEntered(t)

	time.Sleep(200 * time.Millisecond)
	if got := s.Snapshot().Phase; got != models.PhaseLoading {
		t.Fatalf("stale timer reverted a newer state: phase = %s", got)
	}
	release()
	<-done
	if got := s.Snapshot().Phase; got != models.PhaseSuccess {
		t.Fatalf("phase = %s", got)
	}
}

func TestErrorPersistsUntilNextSubmit(t *testing.T) {
	p := &fakePredictor{err: errors.New("boom")}
	s, _ := newTestSession(t, p, 20*time.Millisecond)
	fillDates(t, s)

	_, _ = s.Submit(context.Background())
	time.Sleep(60 * time.Millisecond)
	if got := s.Snapshot().Phase; got != models.PhaseError {
		t.Fatalf("error should persist, phase = %s", got)
	}

	p.set(scenarioRaw, nil)
	snap, err := s.Submit(context.Background())
	if err != nil || snap.Phase != models.PhaseSuccess || snap.Error != "" {
		t.Fatalf("retry: %v %s %q", err, snap.Phase, snap.Error)
	}
}

func TestEmptyPredictionListIsSuccess(t *testing.T) {
	p := &fakePredictor{out: []models.RawPrediction{}}
	s, _ := newTestSession(t, p, time.Minute)
	_ = s.SetStart("2024-02-01")
	_ = s.SetEnd("2024-01-01")

	snap, err := s.Submit(context.Background())
	if err != nil || snap.Phase != models.PhaseSuccess {
		t.Fatalf("submit: %v %s", err, snap.Phase)
	}
	if !snap.Series.IsEmpty() || snap.Summary.Change != 0 || snap.Summary.ChangePercent != 0 {
		t.Fatalf("expected empty result, got %+v", snap.Summary)
	}
}

func TestSubscribeAndClose(t *testing.T) {
	s, _ := newTestSession(t, &fakePredictor{}, time.Second)
	ch, cancel := s.Subscribe()

	first := <-ch
	if first.SessionID != "s-1" || first.Phase != models.PhaseIdle {
		t.Fatalf("first snapshot = %+v", first)
	}
	_ = s.SetStart("2024-01-01")
	if snap := <-ch; snap.Range.Start != "2024-01-01" {
		t.Fatalf("form change not broadcast")
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after cancel")
	}

	ch2, _ := s.Subscribe()
	<-ch2
	s.Close()
	if _, ok := <-ch2; ok {
		t.Fatalf("channel should be closed after session close")
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	p := &fakePredictor{out: scenarioRaw}
	s, _ := newTestSession(t, p, time.Minute)
	fillDates(t, s)
	snap, _ := s.Submit(context.Background())

	snap.Series.Points[0].Predicted = -1
	if s.Snapshot().Series.Points[0].Predicted != 100 {
		t.Fatalf("snapshot shares memory with session state")
	}
}

func TestLifecycleEventsCarrySubmittedForm(t *testing.T) {
	p := &fakePredictor{out: scenarioRaw}
	s, ev := newTestSession(t, p, time.Minute)
	fillDates(t, s)

	release := p.block()
	done := make(chan struct{})
	go func() {
		_, _ = s.Submit(context.Background())
		close(done)
	}()
	p.waitEntered(t)

	if err := s.UpdateForm(FormUpdate{Stock: strPtr("ITC.csv"), Start: strPtr("2025-06-01")}); err != nil {
		t.Fatalf("edit while loading: %v", err)
	}
	release()
	<-done

	ev.mu.Lock()
	last := ev.events[len(ev.events)-1]
	ev.mu.Unlock()
	if last.Phase != models.PhaseSuccess {
		t.Fatalf("last phase = %s", last.Phase)
	}
	if last.Instrument != "ADANI_PORTS.csv" || last.Start != "2024-01-01" || last.End != "2024-01-31" {
		t.Fatalf("event reports edited form: %+v", last)
	}
	if snap := s.Snapshot(); snap.Instrument.Key != "ITC.csv" || snap.Range.Start != "2025-06-01" {
		t.Fatalf("edits must survive the response: %+v", snap)
	}
}

func TestCloseWhileLoadingDropsResult(t *testing.T) {
	p := &fakePredictor{out: scenarioRaw}
	s, ev := newTestSession(t, p, time.Minute)
	fillDates(t, s)

	release := p.block()
	var (
		snap models.Snapshot
		err  error
	)
	done := make(chan struct{})
	go func() {
		snap, err = s.Submit(context.Background())
		close(done)
	}()
	p.waitEntered(t)

	s.Close()
	release()
	<-done

	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("err = %v", err)
	}
	if snap.Series.Len() != 0 {
		t.Fatalf("closed session returned data: %+v", snap)
	}
	if got := s.Snapshot(); got.Phase != models.PhaseLoading || got.Series.Len() != 0 {
		t.Fatalf("closed session was updated: phase=%s points=%d", got.Phase, got.Series.Len())
	}
	for _, ph := range ev.phases() {
		if ph == models.PhaseSuccess {
			t.Fatalf("success published after close: %v", ev.phases())
		}
	}
}

func strPtr(v string) *string { return &v }
