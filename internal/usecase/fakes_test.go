package usecase

import (
	"context"
	"io"
	"sync"

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

func (s *captureSink) ofType(t models.EventType) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, ev := range s.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type fakeSource struct {
	payload  *models.PredictionPayload
	fetchErr error
	fetches  int

	upload    *models.UploadResponse
	uploadErr error
	// block, when set, holds PredictFile until closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeSource) FetchSeries(context.Context) (*models.PredictionPayload, error) {
	f.fetches++
	return f.payload, f.fetchErr
}

func (f *fakeSource) PredictFile(ctx context.Context, _ string, r io.Reader) (*models.UploadResponse, error) {
	_, _ = io.Copy(io.Discard, r)
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.upload, f.uploadErr
}

var (
	_ repository.EventSink        = (*captureSink)(nil)
	_ repository.PredictionSource = (*fakeSource)(nil)
)
