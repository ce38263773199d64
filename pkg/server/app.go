package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PowerCast/internal/handler/ws"
	mid "PowerCast/internal/middleware"
	icache "PowerCast/internal/service/cache"
	"PowerCast/internal/usecase"
	"PowerCast/pkg/config"
	xhttp "PowerCast/pkg/http"
	pkgkafka "PowerCast/pkg/kafka"
	applogger "PowerCast/pkg/logger"
)

// App encapsulates the application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	replay     *usecase.ReplayService
	hub        *ws.Hub
	pipeline   *mid.EventPipeline // nil when Kafka is disabled
	producer   *pkgkafka.Producer // nil when Kafka is disabled
	cache      icache.BytesCache  // nil when caching is disabled
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	replay *usecase.ReplayService,
	hub *ws.Hub,
	pipeline *mid.EventPipeline,
	producer *pkgkafka.Producer,
	cache icache.BytesCache,
	handler xhttp.Handler,
) *App {
	a := &App{
		cfg:      cfg,
		log:      log,
		replay:   replay,
		hub:      hub,
		pipeline: pipeline,
		producer: producer,
		cache:    cache,
	}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(log),
	)
	return a
}

// Run starts the application and blocks until interrupted or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.producer != nil && a.cfg.Kafka.LogTopic != "" {
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.LogTopic,
			Publisher:      a.producer,
		})
		a.log.Info("error log collector attached", applogger.String("topic", a.cfg.Kafka.LogTopic))
	}

	if a.pipeline != nil {
		a.pipeline.Start(ctx)
		a.log.Info("kafka event pipeline started",
			applogger.Strings("brokers", a.cfg.Kafka.Brokers),
			applogger.String("topic", a.cfg.Kafka.Topic),
		)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.cfg.Replay.AutoStart {
		go func() {
			if err := a.replay.Start(ctx); err != nil {
				// already logged and surfaced by the replay service
				a.log.Warn("replay auto-start failed", applogger.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		a.log.Info("shutdown signal received")
	case <-ctx.Done():
	}
	return a.Shutdown(context.Background())
}

// Shutdown stops the replay, the HTTP server and the infrastructure clients.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	a.replay.Close()
	a.hub.Close()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.pipeline != nil {
		a.pipeline.Stop()
	}
	// flushes aggregated error logs through the producer, so before closing it
	a.log.RemoveCollector()
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
