package chart

import (
	"context"
	"sync"
	"testing"

	"PowerCast/internal/domain/models"
	"PowerCast/internal/domain/repository"
)

type captureSink struct {
	mu     sync.Mutex
	events []models.Event
}

func (s *captureSink) Publish(_ context.Context, ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *captureSink) frames() []models.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Frame, 0, len(s.events))
	for _, ev := range s.events {
		if ev.Frame != nil {
			out = append(out, *ev.Frame)
		}
	}
	return out
}

var _ repository.EventSink = (*captureSink)(nil)

func TestChartUpdatePublishesSnapshot(t *testing.T) {
	sink := &captureSink{}
	c := New("voltage", RealValue("Voltage", "rgba(255, 206, 86, 1)"), sink)
	ctx := context.Background()

	if err := c.Mutate(func(b *Buffer) error { return b.Append("0", 230.5) }); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if err := c.Update(ctx, ModeNone); err != nil {
		t.Fatalf("update: %v", err)
	}

	frames := sink.frames()
	if len(frames) != 1 {
		t.Fatalf("want 1 frame, got %d", len(frames))
	}
	f := frames[0]
	if f.ChartID != "voltage" || f.Mode != ModeNone || f.Cursor != 1 || !f.Visible {
		t.Fatalf("frame = %+v", f)
	}
	if len(f.Datasets) != 1 || f.Datasets[0].Data[0] != 230.5 {
		t.Fatalf("datasets = %+v", f.Datasets)
	}

	// The published frame is a copy.
	_ = c.Mutate(func(b *Buffer) error { b.Datasets[0].Data[0] = 0; return nil })
	if f.Datasets[0].Data[0] != 230.5 {
		t.Fatalf("frame aliases the buffer")
	}
}

func TestChartDestroyIsIdempotent(t *testing.T) {
	sink := &captureSink{}
	c := New("x", RealValue("x", "rgba(0, 0, 0, 1)"), sink)
	ctx := context.Background()

	_ = c.Mutate(func(b *Buffer) error { return b.Append("0", 1) })
	if err := c.Destroy(ctx); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := c.Destroy(ctx); err != nil {
		t.Fatalf("second destroy: %v", err)
	}
	if len(sink.frames()) != 1 {
		t.Fatalf("second destroy published a frame")
	}
	f := c.Snapshot()
	if !f.Destroyed || f.Visible || len(f.Labels) != 0 {
		t.Fatalf("destroyed frame = %+v", f)
	}
	if err := c.Update(ctx, ModeNone); err != ErrDestroyed {
		t.Fatalf("update after destroy = %v", err)
	}
	if err := c.Mutate(func(*Buffer) error { return nil }); err != ErrDestroyed {
		t.Fatalf("mutate after destroy = %v", err)
	}
}
