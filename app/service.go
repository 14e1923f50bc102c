package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	apiadvisor "github.com/kilianp07/tariffopt/api/advisor"
	"github.com/kilianp07/tariffopt/config"
	"github.com/kilianp07/tariffopt/core/events"
	coremetrics "github.com/kilianp07/tariffopt/core/metrics"
	coremon "github.com/kilianp07/tariffopt/core/monitoring"
	"github.com/kilianp07/tariffopt/core/store"
	"github.com/kilianp07/tariffopt/infra/feed"
	"github.com/kilianp07/tariffopt/infra/logger"
	"github.com/kilianp07/tariffopt/infra/metrics"
	"github.com/kilianp07/tariffopt/infra/monitoring"
	"github.com/kilianp07/tariffopt/infra/mqtt"
	_ "github.com/kilianp07/tariffopt/infra/storage"
	"github.com/kilianp07/tariffopt/internal/eventbus"
)

// Service wires the repository, the HTTP API and the background workers.
type Service struct {
	Catalog *store.Catalog

	cfg      *config.Config
	repo     store.Repository
	bus      *eventbus.Bus[events.Event]
	sink     coremetrics.MetricsSink
	client   *mqtt.PahoClient
	notifier *mqtt.Notifier
	feed     *feed.Client
	handler  http.Handler
	log      logger.Logger
}

// Setup applies the logging and monitoring configuration. It is called once
// per process before any component is built.
func Setup(cfg *config.Config) error {
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return err
	}
	coremon.Init(mon)
	return nil
}

// OpenCatalog opens the configured repository and returns a catalog on it.
// The stored records are loaded, or initialized with the defaults, so an
// invalid tariff fails here.
func OpenCatalog(ctx context.Context, cfg *config.Config) (*store.Catalog, error) {
	repo, err := store.NewRepository(cfg.Storage.Module())
	if err != nil {
		return nil, fmt.Errorf("storage %s: %w", cfg.Storage.Backend, err)
	}
	cat := store.NewCatalog(repo)
	if _, _, err := cat.Snapshot(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("load records: %w", err)
	}
	return cat, nil
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	cat, err := OpenCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		Catalog: cat,
		cfg:     cfg,
		repo:    cat.Repository(),
		bus:     eventbus.New[events.Event](),
		log:     log,
	}

	svc.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	if cfg.MQTT.Enabled {
		svc.client, err = mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.notifier = mqtt.NewNotifier(svc.client, cfg.MQTT.TopicPrefix)
	}
	if cfg.Feed.Enabled() {
		svc.feed = feed.NewClient(cfg.Feed, cat)
	}

	svc.handler = apiadvisor.NewHandler(cat,
		apiadvisor.WithBus(svc.bus),
		apiadvisor.WithMetrics(svc.sink),
		apiadvisor.WithAPIToken(cfg.Server.APIToken),
	).Router()
	return svc, nil
}

// Handler returns the HTTP API handler.
func (s *Service) Handler() http.Handler { return s.handler }

// Run starts the workers and the HTTP server and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	goSafe := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer coremon.Recover()
			if err := fn(); err != nil {
				s.log.Errorf("%s: %v", name, err)
				coremon.CaptureException(err, map[string]string{"module": name})
			}
		}()
	}

	collectorDone := metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.notifier != nil {
		notifierDone := s.notifier.Run(ctx, s.bus)
		defer func() { <-notifierDone }()
	}
	if s.cfg.Metrics.PrometheusEnabled() {
		goSafe("prom server", func() error { return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddress) })
	}
	if s.feed != nil && s.cfg.Feed.PollIntervalSeconds > 0 {
		goSafe("tariff feed", func() error { return s.feed.Start(ctx) })
	}

	srv := &http.Server{Addr: s.cfg.Server.Address, Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("serving API on %s", s.cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Duration(s.cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("http shutdown: %v", err)
	}
	<-collectorDone
	wg.Wait()
	return runErr
}

// SyncTariff fetches the remote tariff once.
func (s *Service) SyncTariff(ctx context.Context) error {
	if s.feed == nil {
		return errors.New("tariff feed not configured")
	}
	_, err := s.feed.Sync(ctx)
	return err
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.client != nil {
		s.client.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return s.repo.Close()
}
