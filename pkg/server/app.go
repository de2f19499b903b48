package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockDash/internal/catalog"
	"StockDash/internal/domain/repository"
	"StockDash/internal/usecase"
	"StockDash/pkg/cache"
	xhttp "StockDash/pkg/http"
	applogger "StockDash/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	log        *applogger.Logger
	httpServer *xhttp.Server
	sessions   *usecase.Manager
	refresher  *catalog.Refresher
	events     repository.EventPublisher
	cache      cache.Service
}

// New creates a new App instance with all dependencies.
func New(
	l *applogger.Logger,
	httpServer *xhttp.Server,
	sessions *usecase.Manager,
	refresher *catalog.Refresher,
	events repository.EventPublisher,
	c cache.Service,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		log:        l,
		httpServer: httpServer,
		sessions:   sessions,
		refresher:  refresher,
		events:     events,
		cache:      c,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts background services and the HTTP server, then blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if a.refresher != nil {
		a.refresher.Start()
	}
	a.sessions.Start()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		a.shutdown()
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	a.shutdown()
	return nil
}

// shutdown stops intake first, then in-flight sessions, then infrastructure clients.
func (a *App) shutdown() {
	a.log.Info("shutting down...")

	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.sessions.Close()

	if a.refresher != nil {
		a.refresher.Stop()
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("event publisher close error", applogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
}
