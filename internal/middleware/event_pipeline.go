package middleware

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"PowerCast/internal/domain/models"
	domrepo "PowerCast/internal/domain/repository"
	"PowerCast/pkg/logger"
)

var (
	ErrPipelineFull    = errors.New("event pipeline buffer full")
	ErrPipelineStopped = errors.New("event pipeline stopped")
)

// EventPipeline sits between the chart widgets and a slow sink such as Kafka.
// Publish validates, optionally throttles frames per chart and enqueues without
// blocking; workers drain the buffer into the downstream sink with retries.
// The newest throttled frame of each chart is held and flushed ahead of the
// next done event, so consumers always see the final window.
type EventPipeline struct {
	next     domrepo.EventSink
	metrics  domrepo.Metrics
	log      *logger.Logger
	maxRPS   int
	bufSize  int
	workers  int
	attempts int
	bufCh    chan models.Event
	stopCh   chan struct{}
	wg       sync.WaitGroup

	mu       sync.Mutex
	started  bool
	stopped  bool
	lastSeen map[string]time.Time // per-chart last accepted frame
	held     map[string]models.Event
	now      func() time.Time
}

type PipelineOption func(*EventPipeline)

// WithMaxRPS caps frames per second per chart. Zero disables throttling.
func WithMaxRPS(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n >= 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the capacity of the pending-event buffer.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

func WithWorkers(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithAttempts sets how many times a worker tries to deliver one event.
func WithAttempts(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.attempts = n
		}
	}
}

func NewEventPipeline(next domrepo.EventSink, metrics domrepo.Metrics, log *logger.Logger, opts ...PipelineOption) *EventPipeline {
	p := &EventPipeline{
		next:     next,
		metrics:  metrics,
		log:      log.With("event_pipeline"),
		bufSize:  1000,
		workers:  1,
		attempts: 3,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
		held:     make(map[string]models.Event),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan models.Event, p.bufSize)
	return p
}

// Start launches the workers. Further calls are no-ops.
func (p *EventPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx)
	}
}

func (p *EventPipeline) work(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			p.drain(ctx)
			return
		case ev := <-p.bufCh:
			p.deliver(ctx, ev)
		}
	}
}

// drain delivers what is still buffered once, without retries.
func (p *EventPipeline) drain(ctx context.Context) {
	for {
		select {
		case ev := <-p.bufCh:
			if err := p.next.Publish(ctx, ev); err != nil {
				p.metrics.RecordError("pipeline_drain")
			}
		default:
			return
		}
	}
}

func (p *EventPipeline) deliver(ctx context.Context, ev models.Event) {
	start := p.now()
	backoff := 50 * time.Millisecond
	for attempt := 1; ; attempt++ {
		err := p.next.Publish(ctx, ev)
		if err == nil {
			p.metrics.RecordLatency("pipeline_deliver", time.Since(start).Seconds())
			return
		}
		if attempt >= p.attempts || ctx.Err() != nil {
			p.metrics.RecordError("pipeline_drop")
			p.log.Warn("event dropped",
				logger.String("type", string(ev.Type)),
				logger.Int("attempts", attempt),
				logger.Error(err),
			)
			return
		}
		select {
		case <-time.After(backoff):
		case <-p.stopCh:
		case <-ctx.Done():
		}
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
}

// Stop stops the workers after a final drain. Safe to call more than once;
// Publish fails with ErrPipelineStopped afterwards.
func (p *EventPipeline) Stop() {
	p.mu.Lock()
	wasRunning := p.started && !p.stopped
	p.stopped = true
	p.mu.Unlock()
	if !wasRunning {
		return
	}
	close(p.stopCh)
	p.wg.Wait()
}

// Publish implements EventSink.
func (p *EventPipeline) Publish(_ context.Context, ev models.Event) error {
	if err := validateEvent(ev); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrPipelineStopped
	}

	switch ev.Type {
	case models.EventFrame:
		if !p.allowLocked(ev.Frame, p.now()) {
			p.held[ev.Frame.ChartID] = ev
			p.metrics.RecordError("pipeline_throttle")
			return nil
		}
		delete(p.held, ev.Frame.ChartID)
	case models.EventDone:
		if err := p.flushHeldLocked(); err != nil {
			return err
		}
	}
	return p.enqueue(ev)
}

func (p *EventPipeline) enqueue(ev models.Event) error {
	select {
	case p.bufCh <- ev:
		return nil
	default:
		p.metrics.RecordError("pipeline_buffer_full")
		return ErrPipelineFull
	}
}

// flushHeldLocked enqueues the held frames in chart order.
func (p *EventPipeline) flushHeldLocked() error {
	ids := make([]string, 0, len(p.held))
	for id := range p.held {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := p.enqueue(p.held[id]); err != nil {
			return err
		}
		delete(p.held, id)
	}
	return nil
}

// Depth returns the number of buffered events.
func (p *EventPipeline) Depth() int { return len(p.bufCh) }

func validateEvent(ev models.Event) error {
	switch ev.Type {
	case models.EventFrame:
		if ev.Frame == nil || ev.Frame.ChartID == "" {
			return fmt.Errorf("frame event without chart")
		}
		for _, ds := range ev.Frame.Datasets {
			if len(ds.Data) != len(ev.Frame.Labels) {
				return fmt.Errorf("chart %s: dataset %q has %d points for %d labels",
					ev.Frame.ChartID, ds.Label, len(ds.Data), len(ev.Frame.Labels))
			}
		}
	case models.EventStatus, models.EventDone:
		if ev.Status == nil {
			return fmt.Errorf("%s event without status", ev.Type)
		}
	case models.EventError:
		if ev.Message == "" {
			return fmt.Errorf("error event without message")
		}
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// allowLocked throttles redraws; visibility changes and teardown always pass.
func (p *EventPipeline) allowLocked(f *models.Frame, now time.Time) bool {
	if p.maxRPS <= 0 || f.Destroyed || !f.Visible {
		return true
	}
	last := p.lastSeen[f.ChartID]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[f.ChartID] = now
	return true
}
