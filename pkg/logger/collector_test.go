package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestCollectorDeduplicatesAndFlushesOnClose(t *testing.T) {
	pub := &capturePublisher{}
	l := NewNop()
	child := l.With("replay")
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		child.Error("fetch failed", String("op", "fetch"), Error(errors.New("boom")))
	}
	child.Error("other failure")
	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.topic != "logs" {
		t.Fatalf("topic = %q", pub.topic)
	}
	if len(pub.batches) != 1 {
		t.Fatalf("want 1 batch, got %d", len(pub.batches))
	}
	counts := map[string]int{}
	for _, e := range pub.batches[0] {
		counts[e.Message] = e.Count
	}
	if counts["fetch failed"] != 3 || counts["other failure"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})
	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "b", nil, "x.go:2")
	c.AddLog("error", "c", nil, "x.go:3")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 2 {
		t.Fatalf("want 2 batches, got %d", len(pub.batches))
	}
	if len(pub.batches[0])+len(pub.batches[1]) != 3 {
		t.Fatalf("lost entries: %v", pub.batches)
	}
}
