package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"PowerCast/internal/chart"
	"PowerCast/internal/domain/models"
	"PowerCast/pkg/logger"
	"PowerCast/pkg/metrics"
)

func newTestUpload(src *fakeSource, sink *captureSink, limiter Limiter) *UploadUseCase {
	view := chart.NewView("upload", sink)
	r := NewSingleShotRenderer("Predictions", "rgba(75, 192, 192, 1)", sink)
	return NewUploadUseCase(src, r, view, limiter, metrics.Nop{}, logger.NewNop())
}

func TestUploadRendersPredictions(t *testing.T) {
	src := &fakeSource{upload: &models.UploadResponse{Predictions: []float64{5, 15}}}
	u := newTestUpload(src, &captureSink{}, nil)

	f, err := u.Submit(context.Background(), "127.0.0.1", "data.csv", strings.NewReader("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !reflect.DeepEqual(f.Labels, []string{"Entry 1", "Entry 2"}) {
		t.Fatalf("labels = %v", f.Labels)
	}
	if len(f.Datasets) != 1 || !reflect.DeepEqual(f.Datasets[0].Data, []float64{5, 15}) {
		t.Fatalf("datasets = %+v", f.Datasets)
	}
	if !f.Visible || !u.View().Visible() {
		t.Fatalf("view hidden after success")
	}
	if u.InFlight() {
		t.Fatalf("submit control still disabled")
	}
}

func TestUploadReplacesPreviousChart(t *testing.T) {
	src := &fakeSource{upload: &models.UploadResponse{Predictions: []float64{1, 2, 3}}}
	u := newTestUpload(src, &captureSink{}, nil)
	ctx := context.Background()

	if _, err := u.Submit(ctx, "c", "a.csv", strings.NewReader("x")); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	first := u.View().Chart()

	src.upload = &models.UploadResponse{Predictions: []float64{9}}
	f, err := u.Submit(ctx, "c", "b.csv", strings.NewReader("y"))
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if !first.Destroyed() {
		t.Fatalf("previous chart not destroyed")
	}
	if !reflect.DeepEqual(f.Labels, []string{"Entry 1"}) {
		t.Fatalf("labels = %v", f.Labels)
	}
}

func TestUploadUpstreamErrorHidesView(t *testing.T) {
	src := &fakeSource{upload: &models.UploadResponse{Error: "bad file"}}
	u := newTestUpload(src, &captureSink{}, nil)

	_, err := u.Submit(context.Background(), "c", "bad.csv", strings.NewReader("?"))
	if !errors.Is(err, models.ErrUpstream) || !strings.Contains(err.Error(), "bad file") {
		t.Fatalf("err = %v", err)
	}
	if u.View().Visible() || u.View().Chart() != nil {
		t.Fatalf("a chart was rendered for an error response")
	}
	if u.InFlight() {
		t.Fatalf("submit control not re-enabled")
	}
}

func TestUploadEmptyResponse(t *testing.T) {
	u := newTestUpload(&fakeSource{upload: &models.UploadResponse{}}, &captureSink{}, nil)
	_, err := u.Submit(context.Background(), "c", "x.csv", strings.NewReader(""))
	if !errors.Is(err, models.ErrDataShape) {
		t.Fatalf("err = %v", err)
	}
}

func TestUploadNetworkErrorReleasesControl(t *testing.T) {
	src := &fakeSource{uploadErr: models.NetworkError("predict file", errors.New("refused"))}
	u := newTestUpload(src, &captureSink{}, nil)

	if _, err := u.Submit(context.Background(), "c", "x.csv", strings.NewReader("")); !errors.Is(err, models.ErrNetwork) {
		t.Fatalf("err = %v", err)
	}
	if u.InFlight() {
		t.Fatalf("submit control not re-enabled")
	}
}

func TestUploadRejectsConcurrentSubmit(t *testing.T) {
	src := &fakeSource{
		upload:  &models.UploadResponse{Predictions: []float64{1}},
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	u := newTestUpload(src, &captureSink{}, nil)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := u.Submit(ctx, "c", "a.csv", strings.NewReader("x"))
		errc <- err
	}()
	<-src.entered

	if _, err := u.Submit(ctx, "c", "b.csv", strings.NewReader("y")); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("second submit err = %v", err)
	}
	close(src.block)

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("first submit: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("first submit never returned")
	}
	if u.InFlight() {
		t.Fatalf("submit control not re-enabled")
	}
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func TestUploadRateLimited(t *testing.T) {
	src := &fakeSource{upload: &models.UploadResponse{Predictions: []float64{1}}}
	u := newTestUpload(src, &captureSink{}, denyAll{})
	if _, err := u.Submit(context.Background(), "c", "a.csv", strings.NewReader("x")); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v", err)
	}
}

func TestSubmitControl(t *testing.T) {
	var c SubmitControl
	if !c.Enabled() || !c.Disable() {
		t.Fatalf("fresh control should be enabled and acquirable")
	}
	if c.Disable() || c.Enabled() {
		t.Fatalf("disabled control acquired twice")
	}
	c.Enable()
	if !c.Enabled() {
		t.Fatalf("control not re-enabled")
	}
}
