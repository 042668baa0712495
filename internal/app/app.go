package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsIngest/internal/config"
	"NewsIngest/internal/httpapi"
	"NewsIngest/internal/infrastructure/newsapi"
	"NewsIngest/internal/infrastructure/scheduler"
	"NewsIngest/internal/infrastructure/storage"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	server    *http.Server
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance: database pool, adapters,
// ingestion use case, HTTP surface, and the optional scheduled job.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	keywords := storage.NewKeywordRepository(db)
	news := storage.NewNewsRepository(db)
	fetcher := newsapi.NewClient(cfg.NewsAPI)

	ingestor := usecase.NewIngestor(usecase.IngestorDeps{
		Keywords: keywords,
		Fetcher:  fetcher,
		News:     news,
		Config:   cfg.Ingest,
		Logger:   baseLogger.With("component", "ingestor"),
	})

	api := httpapi.NewServer(ingestor, news, baseLogger.With("component", "http"))
	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: api.Router(),
	}

	var sched *usecase.Scheduler
	if cfg.Scheduler.Enabled {
		driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval(), cfg.Scheduler.Location())
		sched = usecase.NewScheduler(driver, ingestor, baseLogger.With("component", "scheduler"))
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		server:    server,
		scheduler: sched,
	}, nil
}

// Run starts the scheduled job (when enabled) and the HTTP server, then
// blocks until the context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval())
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.HTTP.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.scheduler != nil {
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			a.logger.Error("scheduler stop failed", "error", err)
		}
	}

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
