package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"StockDash/internal/domain/models"
	icache "StockDash/internal/service/cache"
	"StockDash/internal/service/ratelimit"
	applogger "StockDash/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRateLimited     = errors.New("too many submissions, slow down")
)

// ManagerConfig tunes session lifetime and submit throttling.
type ManagerConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	SubmitBurst   float64
	SubmitPerSec  float64
}

// Manager owns every live session. Sessions expire after IdleTTL without access.
type Manager struct {
	deps    SessionDeps
	cfg     ManagerConfig
	store   *icache.TTLCache[*Session]
	limiter *ratelimit.Limiter
	log     *applogger.Logger

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewManager creates a Manager. Call Start to run the idle sweeper.
func NewManager(deps SessionDeps, cfg ManagerConfig) *Manager {
	if deps.Logger == nil {
		deps.Logger = applogger.Nop()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	m := &Manager{
		deps:    deps,
		cfg:     cfg,
		limiter: ratelimit.New(),
		log:     deps.Logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	m.store = icache.NewTTLCache(m.evicted)
	return m
}

// Create starts a new Idle session.
func (m *Manager) Create() *Session {
	s := NewSession(uuid.NewString(), m.deps)
	m.store.Set(s.ID(), s, m.cfg.IdleTTL)
	m.log.Debug("session created", applogger.String("session_id", s.ID()))
	return s
}

// Get returns a live session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Submit throttles and runs a submission for session id.
func (m *Manager) Submit(ctx context.Context, id string) (models.Snapshot, error) {
	s, err := m.Get(id)
	if err != nil {
		return models.Snapshot{}, err
	}
	if s.Busy() {
		return s.Snapshot(), ErrSubmissionInFlight
	}
	if !m.limiter.Allow(id, m.cfg.SubmitBurst, m.cfg.SubmitPerSec) {
		return s.Snapshot(), ErrRateLimited
	}
	return s.Submit(ctx)
}

// Remove closes and forgets a session.
func (m *Manager) Remove(id string) bool {
	s, ok := m.store.Delete(id)
	if ok {
		m.limiter.Forget(id)
		s.Close()
	}
	return ok
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int { return m.store.Len() }

// Start runs the idle sweeper until Close.
func (m *Manager) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(m.done)
		t := time.NewTicker(m.cfg.SweepInterval)
		defer t.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-t.C:
				if n := m.store.Sweep(); n > 0 {
					m.log.Debug("idle sessions expired", applogger.Int("count", n))
				}
			}
		}
	}()
}

// Close stops the sweeper and closes every session.
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.started.Load() {
			<-m.done
		}
		m.store.Drain()
	})
}

func (m *Manager) evicted(id string, s *Session) {
	m.limiter.Forget(id)
	s.Close()
}
