package catalog

import (
	"fmt"

	applogger "StockDash/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Refresher reloads a file-backed catalog on a cron schedule (seconds field included).
type Refresher struct {
	cron    *cron.Cron
	catalog *Catalog
	log     *applogger.Logger
}

// NewRefresher registers the reload job. An empty schedule yields a Refresher that does nothing.
func NewRefresher(c *Catalog, schedule string, l *applogger.Logger) (*Refresher, error) {
	if l == nil {
		l = applogger.Nop()
	}
	r := &Refresher{catalog: c, log: l}
	if schedule == "" {
		return r, nil
	}
	r.cron = cron.New(cron.WithSeconds())
	if _, err := r.cron.AddFunc(schedule, r.reload); err != nil {
		return nil, fmt.Errorf("register catalog refresh %q: %w", schedule, err)
	}
	return r, nil
}

// Start starts the scheduler.
func (r *Refresher) Start() {
	if r.cron == nil {
		return
	}
	r.cron.Start()
	r.log.Info("catalog refresher started", applogger.Int("instruments", r.catalog.Len()))
}

// Stop stops the scheduler and waits for a running reload to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.log.Info("catalog refresher stopped")
}

func (r *Refresher) reload() {
	changed, err := r.catalog.Reload()
	if err != nil {
		r.log.Warn("catalog reload failed, keeping current list", applogger.Error(err))
		return
	}
	if changed {
		r.log.Info("catalog reloaded", applogger.Int("instruments", r.catalog.Len()))
	}
}
