package predictor

import (
    "context"
    "errors"
    "io"
    "strconv"
    "time"

    "PowerCast/internal/domain/models"
    "PowerCast/internal/domain/repository"
    svcmetrics "PowerCast/internal/service/metrics"
    "PowerCast/pkg/config"
    xhttp "PowerCast/pkg/http"
    "PowerCast/pkg/logger"
)

const (
    endpointFetch  = "fetch"
    endpointUpload = "upload"
)

// Client talks to the prediction service.
type Client struct {
    base *HTTPServiceBase
    path string
    log  *logger.Logger
    now  func() time.Time
}

func NewClient(cfg *config.Config, log *logger.Logger, opts ...xhttp.ClientOption) *Client {
    svcmetrics.Register()
    return &Client{
        base: NewHTTPServiceBase(cfg, opts...),
        path: cfg.Predictor.PredictPath,
        log:  log.With("predictor"),
        now:  time.Now,
    }
}

// FetchRaw returns the undecoded GET /predict body.
func (c *Client) FetchRaw(ctx context.Context) ([]byte, error) {
    start := c.now()
    body, err := c.base.GetRaw(ctx, c.path)
    svcmetrics.UpstreamLatency.WithLabelValues(endpointFetch).Observe(time.Since(start).Seconds())
    if err != nil {
        perr := classifyTransport("fetch series", err, false)
        svcmetrics.UpstreamErrors.WithLabelValues(endpointFetch, string(perr.Kind)).Inc()
        return nil, perr
    }
    return body, nil
}

// FetchSeries fetches and decodes the bulk payload.
func (c *Client) FetchSeries(ctx context.Context) (*models.PredictionPayload, error) {
    body, err := c.FetchRaw(ctx)
    if err != nil {
        return nil, err
    }
    p, dropped, err := decodePayload(body)
    if err != nil {
        svcmetrics.UpstreamErrors.WithLabelValues(endpointFetch, string(models.KindOf(err))).Inc()
        return nil, err
    }
    if dropped != nil {
        c.log.Warn("ignoring malformed upstream metrics", logger.Error(dropped))
    }
    c.log.Debug("series fetched",
        logger.Int("points", len(p.Predictions)),
        logger.Int("features", len(p.Features)),
    )
    return p, nil
}

// PredictFile posts one file to the service. cache_buster defeats intermediary caches.
func (c *Client) PredictFile(ctx context.Context, filename string, file io.Reader) (*models.UploadResponse, error) {
    start := c.now()
    query := map[string][]string{
        "cache_buster": {strconv.FormatInt(start.UnixMilli(), 10)},
    }
    body, err := c.base.PostFile(ctx, c.path, query, "file", filename, file)
    svcmetrics.UpstreamLatency.WithLabelValues(endpointUpload).Observe(time.Since(start).Seconds())
    if err != nil {
        perr := classifyTransport("predict file", err, true)
        svcmetrics.UpstreamErrors.WithLabelValues(endpointUpload, string(perr.Kind)).Inc()
        return nil, perr
    }

    resp, err := DecodeUploadResponse(body)
    if err != nil {
        svcmetrics.UpstreamErrors.WithLabelValues(endpointUpload, string(models.KindOf(err))).Inc()
        return nil, err
    }
    return resp, nil
}

// classifyTransport maps client errors to network errors carrying the upstream
// message. With upstreamVerdict set, a JSON "error" on a non-2xx response is an
// upstream error instead.
func classifyTransport(op string, err error, upstreamVerdict bool) *models.PredictionError {
    var se *xhttp.StatusError
    if errors.As(err, &se) {
        msg, fromJSON := errorBody(se.Body)
        if fromJSON && upstreamVerdict {
            return models.UpstreamError(op, msg)
        }
        if msg == "" {
            msg = "HTTP " + strconv.Itoa(se.Code)
        } else {
            msg = "HTTP " + strconv.Itoa(se.Code) + ": " + msg
        }
        return &models.PredictionError{Kind: models.KindNetwork, Op: op, Message: msg}
    }
    return models.NetworkError(op, err)
}

var _ repository.PredictionSource = (*Client)(nil)
