package usecase

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"PowerCast/internal/chart"
	"PowerCast/internal/domain/models"
	drepo "PowerCast/internal/domain/repository"
	"PowerCast/pkg/logger"
)

var (
	ErrSubmitInFlight = errors.New("an upload is already being processed")
	ErrRateLimited    = errors.New("too many uploads, retry later")
)

// SubmitControl is the submit button of the upload form: disabled while a
// request is in flight.
type SubmitControl struct {
	disabled atomic.Bool
}

// Disable acquires the control. It reports false if it was already disabled.
func (c *SubmitControl) Disable() bool { return c.disabled.CompareAndSwap(false, true) }

func (c *SubmitControl) Enable() { c.disabled.Store(false) }

func (c *SubmitControl) Enabled() bool { return !c.disabled.Load() }

// Limiter throttles uploads per client key.
type Limiter interface {
	Allow(key string) bool
}

// UploadUseCase runs the batch flow: submit a file, render its predictions.
type UploadUseCase struct {
	source   drepo.PredictionSource
	renderer *SingleShotRenderer
	view     *chart.View
	limiter  Limiter
	rec      drepo.Metrics
	log      *logger.Logger
	submit   SubmitControl
}

// NewUploadUseCase creates the flow. limiter may be nil.
func NewUploadUseCase(source drepo.PredictionSource, renderer *SingleShotRenderer, view *chart.View, limiter Limiter, rec drepo.Metrics, log *logger.Logger) *UploadUseCase {
	return &UploadUseCase{
		source:   source,
		renderer: renderer,
		view:     view,
		limiter:  limiter,
		rec:      rec,
		log:      log.With("upload"),
	}
}

// Submit sends the file and renders the result. The submit control is
// released once the request settles, whatever the outcome.
func (u *UploadUseCase) Submit(ctx context.Context, client, filename string, file io.Reader) (models.Frame, error) {
	if u.limiter != nil && !u.limiter.Allow(client) {
		return models.Frame{}, ErrRateLimited
	}
	if !u.submit.Disable() {
		return models.Frame{}, ErrSubmitInFlight
	}
	defer u.submit.Enable()

	started := time.Now()
	resp, err := u.source.PredictFile(ctx, filename, file)
	u.rec.RecordLatency("predict_file", time.Since(started).Seconds())
	if err == nil {
		err = u.renderer.Render(ctx, u.view, resp)
	}
	if err != nil {
		return models.Frame{}, u.fail(ctx, filename, err)
	}

	f := u.view.Snapshot()
	u.log.Info("upload rendered", logger.String("file", filename), logger.Int("points", len(f.Labels)))
	return f, nil
}

func (u *UploadUseCase) fail(ctx context.Context, filename string, err error) error {
	kind := string(models.KindOf(err))
	if kind == "" {
		kind = "internal"
	}
	if herr := u.view.Hide(ctx); herr != nil {
		u.log.Warn("hide upload view failed", logger.Error(herr))
	}
	u.rec.RecordError(kind)
	u.log.Error("upload failed",
		logger.String("file", filename),
		logger.String("kind", kind),
		logger.Error(err),
	)
	return err
}

func (u *UploadUseCase) View() *chart.View { return u.view }

// ChartConfig is the configuration of the upload chart, rendered or not.
func (u *UploadUseCase) ChartConfig() chart.Config { return u.renderer.Config() }

// InFlight reports whether a submit is being processed.
func (u *UploadUseCase) InFlight() bool { return !u.submit.Enabled() }
