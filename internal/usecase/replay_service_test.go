package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"PowerCast/internal/domain/models"
	"PowerCast/internal/services/features"
	"PowerCast/pkg/logger"
	"PowerCast/pkg/metrics"
)

func newTestReplay(src *fakeSource, sink *captureSink) *ReplayService {
	return NewReplayService(ReplayConfig{
		Interval:      5 * time.Millisecond,
		MaxDataPoints: 50,
		PrimaryLabel:  "LGBM",
		PrimaryColor:  "rgba(54, 162, 235, 1)",
		ActualKey:     "global_active_power",
		Metrics:       models.DefaultMetrics(),
	}, src, features.NewEvaluator(), sink, metrics.Nop{}, logger.NewNop())
}

func waitDone(t *testing.T, s *ReplayService) {
	t.Helper()
	sched := s.Scheduler()
	if sched == nil {
		t.Fatalf("no scheduler")
	}
	select {
	case <-sched.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("replay did not finish")
	}
	deadline := time.Now().Add(time.Second)
	for s.Status().State != models.ReplayCompleted {
		if time.Now().After(deadline) {
			t.Fatalf("state = %s", s.Status().State)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestReplayServiceRunsToCompletion(t *testing.T) {
	src := &fakeSource{payload: &models.PredictionPayload{
		Predictions: models.PredictionSeries{10, 20, 30},
		Features: models.FeatureSeries{
			"global_active_power": {1, 2, 3},
			"voltage":             {230, 231, 232},
		},
	}}
	sink := &captureSink{}
	s := newTestReplay(src, sink)
	defer s.Close()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, s)

	st := s.Status()
	if st.Cursor != 3 || st.Length != 3 || st.StopCause != CauseExhausted {
		t.Fatalf("status = %+v", st)
	}
	if st.Accuracy == nil || st.Accuracy.MAE != 18 {
		t.Fatalf("accuracy = %+v", st.Accuracy)
	}

	f := s.Charts()[0].Snapshot()
	if f.ChartID != "lgbm" || !reflect.DeepEqual(f.Labels, []string{"0", "1", "2"}) {
		t.Fatalf("primary frame = %+v", f)
	}
	if c, ok := s.Chart("voltage"); !ok || len(c.Snapshot().Labels) != 3 {
		t.Fatalf("voltage chart missing or short")
	}

	deadline := time.Now().Add(time.Second)
	for len(sink.ofType(models.EventDone)) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no done event")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Start(context.Background()); !errors.Is(err, ErrReplayActive) {
		t.Fatalf("restart after completion: %v", err)
	}
}

func TestReplayServicePrefersUpstreamMetrics(t *testing.T) {
	src := &fakeSource{payload: &models.PredictionPayload{
		Predictions: models.PredictionSeries{1},
		Features:    models.FeatureSeries{"global_active_power": {1}, "voltage": {1}},
		Metrics:     map[string]models.ModelAccuracy{"LightGBM": {MSE: 4, RMSE: 2, MAE: 1.5}},
	}}
	s := newTestReplay(src, &captureSink{})
	defer s.Close()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if acc := s.Status().Accuracy; acc == nil || acc.RMSE != 2 {
		t.Fatalf("accuracy = %+v", acc)
	}
}

func TestReplayServiceMissingFeatures(t *testing.T) {
	src := &fakeSource{payload: &models.PredictionPayload{
		Predictions: models.PredictionSeries{1, 2, 3},
	}}
	sink := &captureSink{}
	s := newTestReplay(src, sink)
	defer s.Close()

	err := s.Start(context.Background())
	if !errors.Is(err, models.ErrDataShape) {
		t.Fatalf("err = %v, want data shape error", err)
	}
	if s.Scheduler() != nil {
		t.Fatalf("scheduler started on bad payload")
	}
	st := s.Status()
	if st.State != models.ReplayFailed || st.Cursor != 0 || st.ErrorKind != models.KindDataShape {
		t.Fatalf("status = %+v", st)
	}
	if len(sink.ofType(models.EventError)) != 1 {
		t.Fatalf("error events = %d, want 1", len(sink.ofType(models.EventError)))
	}
	for _, c := range s.Charts() {
		if n := len(c.Snapshot().Labels); n != 0 {
			t.Fatalf("%s has %d points", c.ID(), n)
		}
	}
}

func TestReplayServiceRetriesAfterFailure(t *testing.T) {
	src := &fakeSource{fetchErr: models.NetworkError("fetch series", errors.New("connection refused"))}
	s := newTestReplay(src, &captureSink{})
	defer s.Close()

	if err := s.Start(context.Background()); !errors.Is(err, models.ErrNetwork) {
		t.Fatalf("err = %v", err)
	}

	src.fetchErr = nil
	src.payload = &models.PredictionPayload{
		Predictions: models.PredictionSeries{1},
		Features:    models.FeatureSeries{"global_active_power": {1}, "voltage": {1}},
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if src.fetches != 2 {
		t.Fatalf("fetches = %d", src.fetches)
	}
	if st := s.Status(); st.Error != "" || st.ErrorKind != "" {
		t.Fatalf("error not cleared: %+v", st)
	}
	waitDone(t, s)
}
