package di

import (
	"fmt"

	"StockDash/internal/catalog"
	"StockDash/internal/domain/repository"
	"StockDash/internal/domain/service"
	"StockDash/internal/handler/api"
	internalrepo "StockDash/internal/repository"
	"StockDash/internal/service/predictor"
	"StockDash/internal/usecase"
	"StockDash/pkg/cache"
	"StockDash/pkg/config"
	xhttp "StockDash/pkg/http"
	pkgkafka "StockDash/pkg/kafka"
	applogger "StockDash/pkg/logger"
	"StockDash/pkg/metrics"
	"StockDash/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if cfg.Metrics.Disabled {
		return metrics.Nop{}
	}
	return metrics.New(nil)
}

// ProvideCatalog loads the instrument catalog file.
func ProvideCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	c, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return c, nil
}

// ProvideCatalogRefresher schedules catalog reloads.
func ProvideCatalogRefresher(c *catalog.Catalog, cfg *config.Config, l *applogger.Logger) (*catalog.Refresher, error) {
	return catalog.NewRefresher(c, cfg.Catalog.RefreshCron, l)
}

// ProvideCache creates the prediction response cache: in-process by default,
// Redis behind an in-process L1 when Redis is enabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	mem := cache.MemoryConfig{MaxEntries: cfg.Cache.MaxEntries}
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(mem), nil
	}
	rc, err := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc, cache.LayeredConfig{L1: mem, L1TTL: cfg.Cache.TTL}), nil
}

// ProvidePredictor builds the prediction client chain:
// metrics -> logging -> cache -> HTTP.
func ProvidePredictor(
	cfg *config.Config,
	c cache.Service,
	l *applogger.Logger,
	m repository.Metrics,
) service.Predictor {
	var p service.Predictor = predictor.NewClient(
		cfg.Predictor.BaseURL,
		cfg.Predictor.Timeout,
		predictor.WithPath(cfg.Predictor.Path),
	)
	p = predictor.NewCachingPredictor(c, cfg.Cache.TTL, l, p)
	p = predictor.NewLoggingPredictor(l, p)
	return predictor.NewInstrumentingPredictor(m, p)
}

// ProvideEventPublisher creates the lifecycle event sink. Without brokers events are dropped.
func ProvideEventPublisher(cfg *config.Config, l *applogger.Logger) (repository.EventPublisher, error) {
	if len(cfg.Events.Brokers) == 0 {
		l.Info("lifecycle events disabled, no kafka brokers configured")
		return internalrepo.NoopEventPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithTopic(cfg.Events.Topic),
		pkgkafka.WithAsync(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("lifecycle events enabled",
		applogger.Strings("brokers", cfg.Events.Brokers),
		applogger.String("topic", producer.Topic()),
	)
	return internalrepo.NewKafkaEventPublisher(producer), nil
}

// ProvideTransformer creates the series transformer.
func ProvideTransformer(cfg *config.Config) (*usecase.Transformer, error) {
	mode, err := usecase.ParseReferenceMode(cfg.Transform.ReferenceMode)
	if err != nil {
		return nil, err
	}
	return usecase.NewTransformer(usecase.NewRand(cfg.Transform.Seed), mode), nil
}

// ProvideSessionManager creates the session registry.
func ProvideSessionManager(
	cfg *config.Config,
	p service.Predictor,
	t *usecase.Transformer,
	c *catalog.Catalog,
	events repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Manager {
	return usecase.NewManager(usecase.SessionDeps{
		Predictor:     p,
		Transformer:   t,
		Catalog:       c,
		Events:        events,
		Metrics:       m,
		Logger:        l,
		SuccessWindow: cfg.Session.SuccessWindow,
	}, usecase.ManagerConfig{
		IdleTTL:      cfg.Session.IdleTTL,
		SubmitBurst:  cfg.Session.SubmitBurst,
		SubmitPerSec: cfg.Session.SubmitPerSec,
	})
}

// ProvideDashboardHandler creates the HTTP handler for the presentation layer.
func ProvideDashboardHandler(
	cfg *config.Config,
	l *applogger.Logger,
	c *catalog.Catalog,
	mgr *usecase.Manager,
) *api.DashboardHandler {
	return api.NewDashboardHandler(l, c, mgr, api.NewFormatter(cfg.Display.Currency), cfg.Server.AllowOrigins)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.DashboardHandler, l *applogger.Logger) *xhttp.Server {
	metricsPath := cfg.Metrics.Path
	if cfg.Metrics.Disabled {
		metricsPath = ""
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
		xhttp.WithStaticDir(cfg.Server.StaticDir),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	l *applogger.Logger,
	srv *xhttp.Server,
	mgr *usecase.Manager,
	refresher *catalog.Refresher,
	events repository.EventPublisher,
	c cache.Service,
) *server.App {
	return server.New(l, srv, mgr, refresher, events, c)
}
