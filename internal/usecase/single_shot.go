package usecase

import (
	"context"
	"strconv"

	"PowerCast/internal/chart"
	"PowerCast/internal/domain/models"
	drepo "PowerCast/internal/domain/repository"
)

// SingleShotRenderer turns one upload response into a static chart.
type SingleShotRenderer struct {
	label string
	color string
	sink  drepo.EventSink
}

func NewSingleShotRenderer(label, color string, sink drepo.EventSink) *SingleShotRenderer {
	return &SingleShotRenderer{label: label, color: color, sink: sink}
}

// Config is the chart configuration of rendered uploads.
func (r *SingleShotRenderer) Config() chart.Config { return chart.SingleShot(r.label, r.color) }

// Render replaces the chart of view with the response predictions. A response
// carrying an error hides the view and returns an UpstreamError.
func (r *SingleShotRenderer) Render(ctx context.Context, view *chart.View, resp *models.UploadResponse) error {
	const op = "render upload"

	if resp == nil {
		return models.DataShapeError(op, "empty response")
	}
	if resp.Error != "" {
		if err := view.Hide(ctx); err != nil {
			return err
		}
		return models.UpstreamError(op, resp.Error)
	}
	if resp.Predictions == nil {
		return models.DataShapeError(op, "response has neither predictions nor error")
	}

	if err := view.Destroy(ctx); err != nil {
		return err
	}

	c := chart.New(view.ID(), r.Config(), r.sink)
	err := c.Mutate(func(b *chart.Buffer) error {
		for i, v := range resp.Predictions {
			if err := b.Append("Entry "+strconv.Itoa(i+1), v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return view.Show(ctx, c)
}
