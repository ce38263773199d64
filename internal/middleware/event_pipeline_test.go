package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"PowerCast/internal/domain/models"
	"PowerCast/pkg/logger"
	"PowerCast/pkg/metrics"
)

type flakySink struct {
	mu       sync.Mutex
	failures int
	got      []models.Event
}

func (s *flakySink) Publish(_ context.Context, ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("broker unavailable")
	}
	s.got = append(s.got, ev)
	return nil
}

func (s *flakySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func frame(id string, points int) models.Event {
	labels := make([]string, points)
	data := make([]float64, points)
	return models.FrameEvent(models.Frame{
		ChartID:  id,
		Labels:   labels,
		Datasets: []models.Dataset{{Label: id, Data: data}},
		Visible:  true,
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPipelineDeliversWithRetry(t *testing.T) {
	sink := &flakySink{failures: 1}
	p := NewEventPipeline(sink, metrics.Nop{}, logger.NewNop(), WithAttempts(3))
	p.Start(context.Background())
	defer p.Stop()

	if err := p.Publish(context.Background(), frame("lgbm", 1)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	waitFor(t, func() bool { return sink.count() == 1 })
}

func TestPipelineRejectsInvalidEvents(t *testing.T) {
	p := NewEventPipeline(&flakySink{}, metrics.Nop{}, logger.NewNop())

	bad := frame("lgbm", 2)
	bad.Frame.Datasets[0].Data = bad.Frame.Datasets[0].Data[:1]
	cases := []models.Event{
		bad,
		{Type: models.EventFrame},
		{Type: models.EventDone},
		{Type: models.EventError},
		{Type: "bogus"},
	}
	for _, ev := range cases {
		if err := p.Publish(context.Background(), ev); err == nil {
			t.Fatalf("event %+v accepted", ev)
		}
	}
	if p.Depth() != 0 {
		t.Fatalf("invalid events buffered")
	}
}

func TestPipelineBufferFull(t *testing.T) {
	p := NewEventPipeline(&flakySink{}, metrics.Nop{}, logger.NewNop(), WithBufferSize(1))

	if err := p.Publish(context.Background(), frame("a", 0)); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := p.Publish(context.Background(), frame("a", 0)); !errors.Is(err, ErrPipelineFull) {
		t.Fatalf("err = %v, want ErrPipelineFull", err)
	}
}

func TestPipelineThrottlesPerChart(t *testing.T) {
	p := NewEventPipeline(&flakySink{}, metrics.Nop{}, logger.NewNop(), WithMaxRPS(10))
	now := time.Unix(0, 0)
	p.now = func() time.Time { return now }

	ctx := context.Background()
	_ = p.Publish(ctx, frame("a", 0))
	_ = p.Publish(ctx, frame("a", 0)) // within 100ms: dropped
	_ = p.Publish(ctx, frame("b", 0))

	hidden := frame("a", 0)
	hidden.Frame.Visible = false
	_ = p.Publish(ctx, hidden)

	if p.Depth() != 3 {
		t.Fatalf("depth = %d, want 3", p.Depth())
	}

	now = now.Add(150 * time.Millisecond)
	_ = p.Publish(ctx, frame("a", 0))
	if p.Depth() != 4 {
		t.Fatalf("depth = %d, want 4", p.Depth())
	}
}

func TestPipelineStopDrains(t *testing.T) {
	sink := &flakySink{}
	p := NewEventPipeline(sink, metrics.Nop{}, logger.NewNop())
	for i := 0; i < 5; i++ {
		_ = p.Publish(context.Background(), models.ErrorEvent("boom"))
	}
	p.Start(context.Background())
	p.Stop()
	p.Stop()
	if sink.count() != 5 {
		t.Fatalf("delivered %d, want 5", sink.count())
	}
}

func TestPipelineFlushesThrottledFrameBeforeDone(t *testing.T) {
	sink := &flakySink{}
	p := NewEventPipeline(sink, metrics.Nop{}, logger.NewNop(), WithMaxRPS(10))
	now := time.Unix(0, 0)
	p.now = func() time.Time { return now }

	ctx := context.Background()
	_ = p.Publish(ctx, frame("lgbm", 1))
	_ = p.Publish(ctx, frame("lgbm", 2))
	_ = p.Publish(ctx, frame("lgbm", 3)) // final window, throttled
	if p.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", p.Depth())
	}

	if err := p.Publish(ctx, models.DoneEvent(models.ReplayStatus{State: models.ReplayCompleted})); err != nil {
		t.Fatalf("done: %v", err)
	}
	p.Start(ctx)
	p.Stop()

	if len(sink.got) != 3 {
		t.Fatalf("delivered %d events, want 3", len(sink.got))
	}
	last := sink.got[1]
	if last.Type != models.EventFrame || len(last.Frame.Labels) != 3 {
		t.Fatalf("second event = %+v, want the final frame", last)
	}
	if sink.got[2].Type != models.EventDone {
		t.Fatalf("last event = %s, want done", sink.got[2].Type)
	}
}

func TestPipelinePublishAfterStop(t *testing.T) {
	p := NewEventPipeline(&flakySink{}, metrics.Nop{}, logger.NewNop())
	p.Start(context.Background())
	p.Stop()

	if err := p.Publish(context.Background(), models.ErrorEvent("late")); !errors.Is(err, ErrPipelineStopped) {
		t.Fatalf("err = %v, want ErrPipelineStopped", err)
	}
	if p.Depth() != 0 {
		t.Fatalf("event buffered after stop")
	}
}
