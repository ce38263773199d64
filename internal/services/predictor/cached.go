package predictor

import (
    "context"
    "io"
    "time"

    "PowerCast/internal/domain/models"
    "PowerCast/internal/domain/repository"
    "PowerCast/internal/service/cache"
    svcmetrics "PowerCast/internal/service/metrics"
    "PowerCast/pkg/logger"
)

const payloadKey = "predict:payload"

// CachedSource caches the raw GET /predict body. Only bodies that decode cleanly
// are stored; uploads always go to the service.
type CachedSource struct {
    client *Client
    cache  cache.BytesCache
    ttl    time.Duration
    log    *logger.Logger
}

func NewCachedSource(client *Client, c cache.BytesCache, ttl time.Duration, log *logger.Logger) *CachedSource {
    return &CachedSource{client: client, cache: c, ttl: ttl, log: log.With("predictor-cache")}
}

func (s *CachedSource) FetchSeries(ctx context.Context) (*models.PredictionPayload, error) {
    b, ok, err := s.cache.GetBytes(ctx, payloadKey)
    switch {
    case err != nil:
        svcmetrics.CacheLookups.WithLabelValues("error").Inc()
        s.log.Warn("payload cache read failed", logger.Error(err))
    case ok:
        if p, derr := DecodePayload(b); derr == nil {
            svcmetrics.CacheLookups.WithLabelValues("hit").Inc()
            return p, nil
        }
        svcmetrics.CacheLookups.WithLabelValues("error").Inc()
    default:
        svcmetrics.CacheLookups.WithLabelValues("miss").Inc()
    }

    body, err := s.client.FetchRaw(ctx)
    if err != nil {
        return nil, err
    }
    p, dropped, err := decodePayload(body)
    if err != nil {
        return nil, err
    }
    if dropped != nil {
        s.log.Warn("ignoring malformed upstream metrics", logger.Error(dropped))
    }
    if err := s.cache.SetBytes(ctx, payloadKey, body, s.ttl); err != nil {
        s.log.Warn("payload cache write failed", logger.Error(err))
    }
    return p, nil
}

func (s *CachedSource) PredictFile(ctx context.Context, filename string, file io.Reader) (*models.UploadResponse, error) {
    return s.client.PredictFile(ctx, filename, file)
}

var _ repository.PredictionSource = (*CachedSource)(nil)
