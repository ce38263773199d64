package di

import (
	"context"
	"fmt"
	"time"

	"PowerCast/internal/chart"
	"PowerCast/internal/domain/repository"
	"PowerCast/internal/handler/api"
	"PowerCast/internal/handler/ws"
	mid "PowerCast/internal/middleware"
	internalrepo "PowerCast/internal/repository"
	icache "PowerCast/internal/service/cache"
	"PowerCast/internal/service/ratelimit"
	"PowerCast/internal/services/features"
	"PowerCast/internal/services/predictor"
	"PowerCast/internal/usecase"
	"PowerCast/pkg/config"
	xhttp "PowerCast/pkg/http"
	pkgkafka "PowerCast/pkg/kafka"
	"PowerCast/pkg/logger"
	"PowerCast/pkg/metrics"
	"PowerCast/pkg/server"
)

const uploadViewID = "upload"

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPipeline buffers frames between the charts and Kafka. Nil without a producer.
func ProvideEventPipeline(producer *pkgkafka.Producer, cfg *config.Config, m repository.Metrics, log *logger.Logger) *mid.EventPipeline {
	if producer == nil {
		return nil
	}
	sink := internalrepo.NewKafkaEventSink(producer, cfg.Kafka.Topic)
	return mid.NewEventPipeline(sink, m, log,
		mid.WithBufferSize(cfg.Kafka.BufferSize),
		mid.WithAttempts(cfg.Kafka.Producer.MaxAttempts),
	)
}

// ProvideHub creates the websocket hub.
func ProvideHub(log *logger.Logger) *ws.Hub {
	return ws.NewHub(ws.Options{}, log)
}

// ProvideEventSink fans chart events out to browsers and, when enabled, Kafka.
func ProvideEventSink(hub *ws.Hub, pipeline *mid.EventPipeline) repository.EventSink {
	if pipeline == nil {
		return internalrepo.NewFanoutSink(hub)
	}
	return internalrepo.NewFanoutSink(hub, pipeline)
}

// ProvidePayloadCache creates the prediction payload cache, or nil when disabled.
func ProvidePayloadCache(cfg *config.Config) (icache.BytesCache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return icache.NewTTLCache(), nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, err := icache.NewRedisCache(ctx, icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   "powercast",
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	default:
		return nil, nil
	}
}

// ProvidePredictionSource creates the prediction service client, cached when a cache is configured.
func ProvidePredictionSource(cfg *config.Config, log *logger.Logger, cache icache.BytesCache) repository.PredictionSource {
	client := predictor.NewClient(cfg, log)
	if cache == nil {
		return client
	}
	return predictor.NewCachedSource(client, cache, cfg.Cache.TTL, log)
}

// ProvideReplayService creates the streaming flow.
func ProvideReplayService(cfg *config.Config, src repository.PredictionSource, sink repository.EventSink, m repository.Metrics, log *logger.Logger) *usecase.ReplayService {
	return usecase.NewReplayService(usecase.ReplayConfig{
		Interval:      cfg.Replay.Interval,
		MaxDataPoints: cfg.Replay.MaxDataPoints,
		PrimaryLabel:  cfg.Replay.PrimaryLabel,
		PrimaryColor:  cfg.Replay.PrimaryColor,
		ActualKey:     cfg.Replay.ActualKey,
		Metrics:       cfg.Replay.Metrics,
	}, src, features.NewEvaluator(), sink, m, log)
}

// ProvideUploadUseCase creates the batch flow.
func ProvideUploadUseCase(cfg *config.Config, src repository.PredictionSource, sink repository.EventSink, m repository.Metrics, log *logger.Logger) *usecase.UploadUseCase {
	renderer := usecase.NewSingleShotRenderer(cfg.Upload.Label, cfg.Upload.Color, sink)
	limiter := ratelimit.New(cfg.Upload.RateCapacity, cfg.Upload.RatePerSec)
	return usecase.NewUploadUseCase(src, renderer, chart.NewView(uploadViewID, sink), limiter, m, log)
}

// ProvideHTTPHandler creates the dashboard routes.
func ProvideHTTPHandler(cfg *config.Config, log *logger.Logger, replay *usecase.ReplayService, upload *usecase.UploadUseCase, hub *ws.Hub) xhttp.Handler {
	return api.NewDashboardHandler(log, replay, upload, hub, "PowerCast", cfg.Upload.MaxBytes)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	replay *usecase.ReplayService,
	hub *ws.Hub,
	pipeline *mid.EventPipeline,
	producer *pkgkafka.Producer,
	cache icache.BytesCache,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, replay, hub, pipeline, producer, cache, handler)
}
