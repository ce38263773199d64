package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishEncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "snappy")

	payload := map[string]int{"cursor": 3}
	if err := p.Publish(context.Background(), "powercast.frames", []byte("lgbm"), payload); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d", len(w.msgs))
	}
	m := w.msgs[0]
	if m.Topic != "powercast.frames" || string(m.Key) != "lgbm" {
		t.Fatalf("message = %+v", m)
	}
	var got map[string]int
	if err := json.Unmarshal(m.Value, &got); err != nil || got["cursor"] != 3 {
		t.Fatalf("value = %s (%v)", m.Value, err)
	}
}

func TestPublishBatchPassesRawBytes(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "snappy")

	err := p.PublishBatch(context.Background(), "t", []Message{
		{Value: []byte("raw")},
		{Value: "text"},
	})
	if err != nil {
		t.Fatalf("publish batch: %v", err)
	}
	if string(w.msgs[0].Value) != "raw" || string(w.msgs[1].Value) != "text" {
		t.Fatalf("values = %q, %q", w.msgs[0].Value, w.msgs[1].Value)
	}
	if err := p.PublishBatch(context.Background(), "t", nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducer(&recordingWriter{err: boom}, "snappy")
	if err := p.PublishMessage(context.Background(), "logs", "x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
