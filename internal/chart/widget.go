package chart

import (
	"context"
	"errors"
	"sync"

	"PowerCast/internal/domain/models"
	"PowerCast/internal/domain/repository"
)

// ModeNone redraws without animation.
const ModeNone = "none"

var ErrDestroyed = errors.New("chart destroyed")

// Chart is a server-side chart instance. The buffer is guarded by a mutex so
// HTTP and websocket readers can snapshot while the replay loop mutates it.
// Every Update publishes a frame to the sink.
type Chart struct {
	id   string
	cfg  Config
	sink repository.EventSink

	mu        sync.Mutex
	buf       *Buffer
	mode      string
	visible   bool
	destroyed bool
}

// New creates a visible, empty chart. sink may be nil.
func New(id string, cfg Config, sink repository.EventSink) *Chart {
	return &Chart{
		id:      id,
		cfg:     cfg,
		sink:    sink,
		buf:     newBuffer(cfg.Series),
		mode:    ModeNone,
		visible: true,
	}
}

func (c *Chart) ID() string { return c.id }

func (c *Chart) Config() Config { return c.cfg }

// Mutate runs fn with exclusive access to the buffer. fn must not retain it.
func (c *Chart) Mutate(fn func(b *Buffer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrDestroyed
	}
	return fn(c.buf)
}

// Update publishes the current state as a frame.
func (c *Chart) Update(ctx context.Context, mode string) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return ErrDestroyed
	}
	c.mode = mode
	f := c.snapshotLocked()
	c.mu.Unlock()

	return c.publish(ctx, f)
}

// SetVisible toggles the container and publishes the change.
func (c *Chart) SetVisible(ctx context.Context, visible bool) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return ErrDestroyed
	}
	c.visible = visible
	f := c.snapshotLocked()
	c.mu.Unlock()

	return c.publish(ctx, f)
}

// Destroy releases the buffer and publishes a destroyed frame. Calling it again is a no-op.
func (c *Chart) Destroy(ctx context.Context) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil
	}
	c.destroyed = true
	c.visible = false
	c.buf = newBuffer(c.cfg.Series)
	f := c.snapshotLocked()
	c.mu.Unlock()

	return c.publish(ctx, f)
}

func (c *Chart) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Snapshot returns a deep copy of the chart state.
func (c *Chart) Snapshot() models.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Chart) snapshotLocked() models.Frame {
	labels, ds := c.buf.clone()
	return models.Frame{
		ChartID:   c.id,
		Kind:      string(c.cfg.Kind),
		Title:     c.cfg.Title,
		Mode:      c.mode,
		Labels:    labels,
		Datasets:  ds,
		Cursor:    c.buf.Appended(),
		Visible:   c.visible,
		Destroyed: c.destroyed,
	}
}

func (c *Chart) publish(ctx context.Context, f models.Frame) error {
	if c.sink == nil {
		return nil
	}
	return c.sink.Publish(ctx, models.FrameEvent(f))
}
