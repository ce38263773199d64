package repository

import (
	"context"
	"io"

	"PowerCast/internal/domain/models"
)

// PredictionSource is the remote prediction service.
type PredictionSource interface {
	// FetchSeries returns the bulk payload replayed by the streaming flow.
	FetchSeries(ctx context.Context) (*models.PredictionPayload, error)
	// PredictFile submits one file and returns the service verdict.
	PredictFile(ctx context.Context, filename string, file io.Reader) (*models.UploadResponse, error)
}

// EventSink receives chart frames and status events.
type EventSink interface {
	Publish(ctx context.Context, ev models.Event) error
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, ev models.Event) error

func (f EventSinkFunc) Publish(ctx context.Context, ev models.Event) error { return f(ctx, ev) }

type Metrics interface {
	RecordTick(chart string)
	RecordEviction(chart string)
	RecordCursor(cursor, length int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
