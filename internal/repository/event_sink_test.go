package repository

import (
	"context"
	"errors"
	"testing"

	"PowerCast/internal/domain/models"
	"PowerCast/internal/domain/repository"
)

type recordedMessage struct {
	topic string
	key   string
	value interface{}
}

type fakeProducer struct {
	msgs []recordedMessage
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.msgs = append(p.msgs, recordedMessage{topic, string(key), value})
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func TestKafkaEventSinkKeysByChart(t *testing.T) {
	p := &fakeProducer{}
	s := NewKafkaEventSink(p, "powercast.frames")
	ctx := context.Background()

	_ = s.Publish(ctx, models.FrameEvent(models.Frame{ChartID: "voltage"}))
	_ = s.Publish(ctx, models.ErrorEvent("boom"))

	if len(p.msgs) != 2 {
		t.Fatalf("messages = %d", len(p.msgs))
	}
	if p.msgs[0].topic != "powercast.frames" || p.msgs[0].key != "voltage" {
		t.Fatalf("frame message = %+v", p.msgs[0])
	}
	if p.msgs[1].key != string(models.EventError) {
		t.Fatalf("error message key = %q", p.msgs[1].key)
	}
}

func TestFanoutSinkJoinsErrors(t *testing.T) {
	var calls int
	ok := repository.EventSinkFunc(func(context.Context, models.Event) error { calls++; return nil })
	boom := errors.New("boom")
	bad := repository.EventSinkFunc(func(context.Context, models.Event) error { calls++; return boom })

	f := NewFanoutSink(ok, nil, bad, ok)
	err := f.Publish(context.Background(), models.ErrorEvent("x"))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}
