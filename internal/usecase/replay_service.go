package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"PowerCast/internal/chart"
	"PowerCast/internal/domain/models"
	drepo "PowerCast/internal/domain/repository"
	domsvc "PowerCast/internal/domain/service"
	"PowerCast/pkg/logger"
)

var ErrReplayActive = errors.New("replay already running or completed")

// ReplayConfig configures the streaming flow.
type ReplayConfig struct {
	Interval      time.Duration
	MaxDataPoints int
	PrimaryLabel  string
	PrimaryColor  string
	ActualKey     string
	Metrics       []models.MetricDescriptor
}

// ReplayService fetches the prediction series once and replays it into the
// stream charts: idle -> fetching -> running -> completed, or failed.
type ReplayService struct {
	cfg    ReplayConfig
	source drepo.PredictionSource
	eval   domsvc.AccuracyEvaluator
	sink   drepo.EventSink
	rec    drepo.Metrics
	log    *logger.Logger

	primary *chart.Chart
	metrics []MetricChart

	runCtx context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	status models.ReplayStatus
	store  *SeriesStore
	sched  *ReplayScheduler
}

func NewReplayService(
	cfg ReplayConfig,
	source drepo.PredictionSource,
	eval domsvc.AccuracyEvaluator,
	sink drepo.EventSink,
	rec drepo.Metrics,
	log *logger.Logger,
) *ReplayService {
	primary := chart.New(chart.SanitizeID(cfg.PrimaryLabel), chart.Prediction(cfg.PrimaryLabel, cfg.PrimaryColor), sink)
	metrics := make([]MetricChart, 0, len(cfg.Metrics))
	for _, m := range cfg.Metrics {
		metrics = append(metrics, MetricChart{
			Key:   m.Key(),
			Chart: chart.New(chart.SanitizeID(m.Key()), chart.RealValue(m.Label, m.Color), sink),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ReplayService{
		cfg:     cfg,
		source:  source,
		eval:    eval,
		sink:    sink,
		rec:     rec,
		log:     log.With("replay"),
		primary: primary,
		metrics: metrics,
		runCtx:  ctx,
		cancel:  cancel,
		status: models.ReplayStatus{
			State:    models.ReplayIdle,
			Interval: cfg.Interval,
			Window:   cfg.MaxDataPoints,
		},
	}
}

// Start fetches and loads the series, then starts the tick loop. ctx bounds
// the fetch only; the loop runs until exhaustion or Close.
func (s *ReplayService) Start(ctx context.Context) error {
	s.mu.Lock()
	if st := s.status.State; st != models.ReplayIdle && st != models.ReplayFailed {
		s.mu.Unlock()
		return ErrReplayActive
	}
	s.status.State = models.ReplayFetching
	s.status.Error, s.status.ErrorKind = "", ""
	s.mu.Unlock()
	s.publishStatus(ctx)

	started := time.Now()
	payload, err := s.source.FetchSeries(ctx)
	s.rec.RecordLatency("fetch_series", time.Since(started).Seconds())
	if err != nil {
		return s.fail(ctx, err)
	}

	keys := append(models.MetricKeys(s.cfg.Metrics), s.cfg.ActualKey)
	store := NewSeriesStore(keys...)
	if err := store.Load(payload.Predictions, payload.Features); err != nil {
		return s.fail(ctx, err)
	}

	acc := s.accuracy(payload.Metrics, store)
	sched := NewReplayScheduler(store, s.primary, s.metrics, SchedulerConfig{
		Period:    s.cfg.Interval,
		MaxPoints: s.cfg.MaxDataPoints,
		ActualKey: s.cfg.ActualKey,
	}, s.rec, s.log)

	now := time.Now()
	s.mu.Lock()
	s.store = store
	s.sched = sched
	s.status.State = models.ReplayRunning
	s.status.Length = store.Len()
	s.status.Accuracy = acc
	s.status.StartedAt = &now
	s.status.StopCause = ""
	s.mu.Unlock()

	s.log.Info("replay started",
		logger.Int("length", store.Len()),
		logger.Duration("interval_ms", s.cfg.Interval),
		logger.Int("window", s.cfg.MaxDataPoints),
	)
	s.publishStatus(ctx)

	sched.Start(s.runCtx)
	go s.watch(sched)
	return nil
}

// accuracy prefers metrics reported by the service and falls back to
// computing them against the actual values.
func (s *ReplayService) accuracy(upstream map[string]models.ModelAccuracy, store *SeriesStore) *models.ModelAccuracy {
	if len(upstream) > 0 {
		names := make([]string, 0, len(upstream))
		for name := range upstream {
			names = append(names, name)
		}
		sort.Strings(names)
		acc := upstream[names[0]]
		return &acc
	}
	if s.eval == nil {
		return nil
	}
	acc, err := s.eval.Evaluate(store.Series(s.cfg.ActualKey))
	if err != nil {
		s.log.Warn("accuracy not computed", logger.Error(err))
		return nil
	}
	return &acc
}

func (s *ReplayService) watch(sched *ReplayScheduler) {
	<-sched.Done()

	s.mu.Lock()
	s.status.State = models.ReplayCompleted
	s.status.StopCause = sched.Cause()
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info("replay finished",
		logger.String("cause", st.StopCause),
		logger.Int("cursor", st.Cursor),
		logger.Int("length", st.Length),
	)
	// runCtx may already be cancelled on shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.sink.Publish(ctx, models.DoneEvent(st)); err != nil {
		s.log.Warn("publish done event failed", logger.Error(err))
	}
}

func (s *ReplayService) fail(ctx context.Context, err error) error {
	kind := models.KindOf(err)
	label := string(kind)
	if label == "" {
		label = "internal"
	}

	s.mu.Lock()
	s.status.State = models.ReplayFailed
	s.status.Error = err.Error()
	s.status.ErrorKind = kind
	s.mu.Unlock()

	s.rec.RecordError(label)
	s.log.Error("replay failed", logger.String("kind", label), logger.Error(err))

	if perr := s.sink.Publish(ctx, models.ErrorEvent("Error loading predictions: "+err.Error())); perr != nil {
		s.log.Warn("publish error event failed", logger.Error(perr))
	}
	s.publishStatus(ctx)
	return err
}

func (s *ReplayService) publishStatus(ctx context.Context) {
	if err := s.sink.Publish(ctx, models.StatusEvent(s.Status())); err != nil {
		s.log.Warn("publish status failed", logger.Error(err))
	}
}

// Status returns the current state with a live cursor.
func (s *ReplayService) Status() models.ReplayStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ReplayService) snapshotLocked() models.ReplayStatus {
	st := s.status
	if s.store != nil {
		st.Cursor = s.store.Cursor()
		st.Length = s.store.Len()
	}
	return st
}

// Charts returns the primary chart followed by the metric charts.
func (s *ReplayService) Charts() []*chart.Chart {
	out := make([]*chart.Chart, 0, 1+len(s.metrics))
	out = append(out, s.primary)
	for _, m := range s.metrics {
		out = append(out, m.Chart)
	}
	return out
}

// Chart looks a stream chart up by id.
func (s *ReplayService) Chart(id string) (*chart.Chart, bool) {
	for _, c := range s.Charts() {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Scheduler returns the active scheduler or nil before a successful Start.
func (s *ReplayService) Scheduler() *ReplayScheduler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched
}

// Close stops the tick loop for good.
func (s *ReplayService) Close() {
	s.cancel()
	if sched := s.Scheduler(); sched != nil {
		sched.Stop()
		<-sched.Done()
	}
}
