package chart

import (
	"context"
	"errors"
	"sync"

	"PowerCast/internal/domain/models"
	"PowerCast/internal/domain/repository"
)

// ViewState is the lifecycle of the chart slot owned by a View.
type ViewState int

const (
	ViewAbsent ViewState = iota
	ViewRendered
	ViewDestroyed
)

func (s ViewState) String() string {
	switch s {
	case ViewRendered:
		return "rendered"
	case ViewDestroyed:
		return "destroyed"
	default:
		return "absent"
	}
}

var ErrViewRendered = errors.New("view already holds a rendered chart")

// View owns at most one chart for a page slot: Absent -> Rendered -> Destroyed -> Rendered ...
type View struct {
	id   string
	sink repository.EventSink

	mu     sync.Mutex
	chart  *Chart
	state  ViewState
	hidden bool
}

func NewView(id string, sink repository.EventSink) *View {
	return &View{id: id, sink: sink, hidden: true}
}

func (v *View) ID() string { return v.id }

// Destroy tears down the current chart. Safe when absent or already destroyed.
func (v *View) Destroy(ctx context.Context) error {
	v.mu.Lock()
	c := v.chart
	if v.state != ViewRendered || c == nil {
		v.mu.Unlock()
		return nil
	}
	v.chart = nil
	v.state = ViewDestroyed
	v.mu.Unlock()

	return c.Destroy(ctx)
}

// Show installs c and makes the view visible. The previous chart must be destroyed first.
func (v *View) Show(ctx context.Context, c *Chart) error {
	v.mu.Lock()
	if v.state == ViewRendered {
		v.mu.Unlock()
		return ErrViewRendered
	}
	v.chart = c
	v.state = ViewRendered
	v.hidden = false
	v.mu.Unlock()

	return c.SetVisible(ctx, true)
}

// Hide hides the container. With no chart a hidden placeholder frame is published.
func (v *View) Hide(ctx context.Context) error {
	v.mu.Lock()
	v.hidden = true
	c := v.chart
	v.mu.Unlock()

	if c != nil {
		return c.SetVisible(ctx, false)
	}
	if v.sink == nil {
		return nil
	}
	return v.sink.Publish(ctx, models.FrameEvent(v.placeholder()))
}

func (v *View) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.hidden && v.state == ViewRendered
}

// Chart returns the rendered chart or nil.
func (v *View) Chart() *Chart {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.chart
}

// Snapshot returns the frame of the current chart, or an empty hidden frame.
func (v *View) Snapshot() models.Frame {
	if c := v.Chart(); c != nil {
		return c.Snapshot()
	}
	return v.placeholder()
}

func (v *View) placeholder() models.Frame {
	return models.Frame{
		ChartID:  v.id,
		Kind:     string(KindSingleShot),
		Mode:     ModeNone,
		Labels:   []string{},
		Datasets: []models.Dataset{},
	}
}
