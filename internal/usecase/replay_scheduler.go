package usecase

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"PowerCast/internal/chart"
	drepo "PowerCast/internal/domain/repository"
	"PowerCast/pkg/logger"
)

// Stop causes reported by ReplayScheduler.Cause.
const (
	CauseExhausted = "exhausted"
	CauseDeadline  = "deadline"
	CauseCancelled = "cancelled"
	CauseStopped   = "stopped"
)

// MetricChart binds a feature key to the chart that plots it.
type MetricChart struct {
	Key   string
	Chart *chart.Chart
}

// SchedulerConfig holds the replay timing and window.
type SchedulerConfig struct {
	Period    time.Duration
	MaxPoints int
	ActualKey string
	Grace     time.Duration // added to the backstop deadline
}

// ReplayScheduler reveals the store one point per tick into the charts.
// Ticks run on a single goroutine started by Start; Tick is exported so tests
// can drive it deterministically.
type ReplayScheduler struct {
	store   *SeriesStore
	primary *chart.Chart
	metrics []MetricChart
	cfg     SchedulerConfig
	rec     drepo.Metrics
	log     *logger.Logger

	started  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	cause    atomic.Value
	done     chan struct{}
}

func NewReplayScheduler(store *SeriesStore, primary *chart.Chart, metrics []MetricChart, cfg SchedulerConfig, rec drepo.Metrics, log *logger.Logger) *ReplayScheduler {
	if cfg.Grace <= 0 {
		cfg.Grace = time.Second
	}
	return &ReplayScheduler{
		store:   store,
		primary: primary,
		metrics: metrics,
		cfg:     cfg,
		rec:     rec,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Tick appends the point at the cursor to every chart, evicts overflow, redraws
// and advances. It returns false once the series is exhausted, stopping the
// scheduler.
func (s *ReplayScheduler) Tick(ctx context.Context) bool {
	if s.stopped.Load() {
		return false
	}
	cursor, length := s.store.Cursor(), s.store.Len()
	if cursor >= length {
		s.stop(CauseExhausted)
		return false
	}

	label := strconv.Itoa(cursor)
	pred, _ := s.store.Prediction(cursor)
	actual, _ := s.store.Feature(s.cfg.ActualKey, cursor)
	s.appendPoint(ctx, s.primary, label, pred, actual)

	for _, m := range s.metrics {
		v, _ := s.store.Feature(m.Key, cursor)
		s.appendPoint(ctx, m.Chart, label, v)
	}

	next := s.store.Advance()
	s.rec.RecordCursor(next, length)
	return true
}

func (s *ReplayScheduler) appendPoint(ctx context.Context, c *chart.Chart, label string, values ...float64) {
	evicted := 0
	err := c.Mutate(func(b *chart.Buffer) error {
		if err := b.Append(label, values...); err != nil {
			return err
		}
		evicted = b.TrimTo(s.cfg.MaxPoints)
		return nil
	})
	if err != nil {
		s.log.Warn("replay append failed", logger.String("chart", c.ID()), logger.Error(err))
		return
	}
	s.rec.RecordTick(c.ID())
	for i := 0; i < evicted; i++ {
		s.rec.RecordEviction(c.ID())
	}
	if err := c.Update(ctx, chart.ModeNone); err != nil {
		s.log.Warn("chart update failed", logger.String("chart", c.ID()), logger.Error(err))
	}
}

// Start runs ticks every Period until exhaustion, Stop, ctx cancellation or the
// backstop deadline of (Len+1)*Period+Grace. Calling it again is a no-op.
func (s *ReplayScheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	deadline := time.Duration(s.store.Len()-s.store.Cursor()+1)*s.cfg.Period + s.cfg.Grace
	go s.run(ctx, deadline)
}

func (s *ReplayScheduler) run(ctx context.Context, deadline time.Duration) {
	ticker := time.NewTicker(s.cfg.Period)
	defer ticker.Stop()
	backstop := time.NewTimer(deadline)
	defer backstop.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			s.stop(CauseCancelled)
			return
		case <-backstop.C:
			s.log.Warn("replay deadline reached before exhaustion",
				logger.Int("cursor", s.store.Cursor()),
				logger.Int("length", s.store.Len()),
			)
			s.stop(CauseDeadline)
			return
		case <-ticker.C:
			if !s.Tick(ctx) {
				return
			}
		}
	}
}

// Stop halts the scheduler permanently. Safe to call more than once.
func (s *ReplayScheduler) Stop() { s.stop(CauseStopped) }

func (s *ReplayScheduler) stop(cause string) {
	s.stopOnce.Do(func() {
		s.cause.Store(cause)
		s.stopped.Store(true)
		close(s.done)
	})
}

// Done is closed once the scheduler has stopped.
func (s *ReplayScheduler) Done() <-chan struct{} { return s.done }

// Stopped reports whether the scheduler has stopped.
func (s *ReplayScheduler) Stopped() bool { return s.stopped.Load() }

// Cause returns why the scheduler stopped, or "" while it runs.
func (s *ReplayScheduler) Cause() string {
	if v, ok := s.cause.Load().(string); ok {
		return v
	}
	return ""
}
