package repository

import (
	"context"
	"errors"

	"PowerCast/internal/domain/models"
	"PowerCast/internal/domain/repository"
)

// eventProducer is the part of pkg/kafka.Producer the sink needs.
type eventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaEventSink publishes chart frames and replay events to a Kafka topic.
// Frames are keyed by chart id so a consumer sees each chart in order.
type KafkaEventSink struct {
	producer eventProducer
	topic    string
}

func NewKafkaEventSink(producer eventProducer, topic string) *KafkaEventSink {
	return &KafkaEventSink{producer: producer, topic: topic}
}

func (s *KafkaEventSink) Publish(ctx context.Context, ev models.Event) error {
	key := []byte(ev.Type)
	if ev.Frame != nil {
		key = []byte(ev.Frame.ChartID)
	}
	return s.producer.Publish(ctx, s.topic, key, ev)
}

func (s *KafkaEventSink) Close() error {
	return s.producer.Close()
}

// FanoutSink delivers every event to all sinks and joins their errors.
type FanoutSink struct {
	sinks []repository.EventSink
}

// NewFanoutSink skips nil sinks.
func NewFanoutSink(sinks ...repository.EventSink) *FanoutSink {
	f := &FanoutSink{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *FanoutSink) Publish(ctx context.Context, ev models.Event) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ repository.EventSink = (*KafkaEventSink)(nil)
	_ repository.EventSink = (*FanoutSink)(nil)
)
